package mcpserver

// ExpressionGrammar describes colour expressions and worksheets for LLM
// clients building inputs for the tools.
const ExpressionGrammar = `# Colour Expression Grammar

An expression is a sum of terms. A term is a product of an optional
prefactor and tensors, separated by "*" or blanks.

## Tensors

| Syntax     | Meaning                                         |
|------------|-------------------------------------------------|
| k[i,j]     | Kronecker delta in the fundamental representation |
| K[a,b]     | Kronecker delta in the adjoint representation   |
| t[a,i,j]   | generator (t^a)_ij                              |
| f[a,b,c]   | antisymmetric structure constant                |
| d[a,b,c]   | symmetric structure constant                    |

Indices are non-negative integers. An index that appears twice in a term is
summed over; an index that appears once is free. The first slot of t and all
slots of f, d and K are adjoint indices; the others are fundamental. Using the
same number for both kinds in one term is an error, as is using it more than
twice.

## Prefactors

Monomials in NC, TR, CF and CA with integer powers, real or complex numbers,
and parenthesised sums:

    2*NC^2*TR
    (0,1)*CA          complex number 0 + 1i
    -NC^-1*TR         negative powers are allowed
    (NC - TR)*t[1,2,3]
    NC**2             "**" is the same as "^"

Conventions: Tr(t^a t^b) = TR delta^ab, CA = 2 TR NC, CF = TR NC - TR/NC.
Numeric values use NC = 3 and the configured TR (1/2 by default).

## Examples

    t[1,2,3] t[1,3,2]                       -> NC*CF
    f[1,2,3] f[1,2,3]                       -> 24 at NC = 3
    f[1,2,5]*f[5,3,4] - f[1,3,5]*f[5,2,4]

## Modes

- full: exact in NC.
- lc: only the highest power of NC after expanding CF and CA at large NC.

## Worksheets

Worksheets are YAML files (.yaml or .yml) in the workspace:

    title: gg -> gg
    leading_colour: false
    basis:
      - f[1,2,5] f[5,3,4]
      - f[1,3,5] f[5,2,4]
    expressions:
      - name: casimir
        expr: t[1,2,3] t[1,3,2]

The colour matrix C_ij = <b_i|b_j> of the basis and every expression are
evaluated when the file changes. Expression names must be unique; unnamed
expressions are called expr1, expr2 and so on.
`
