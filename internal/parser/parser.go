// Package parser reads colour expressions and worksheets: monomials in NC, TR,
// CF and CA, tensor products of k, K, t, f and d, and sums of those.
package parser

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/starford/sunc/internal/apperr"
	"github.com/starford/sunc/internal/colour"
)

const number = `[-+]?(?:\d+\.?\d*|\.\d+)(?:[eE][-+]?\d+)?`

var (
	numberRe  = regexp.MustCompile(`^` + number + `$`)
	complexRe = regexp.MustCompile(`^\(\s*(` + number + `)\s*,\s*(` + number + `)\s*\)$`)
	atomRe    = regexp.MustCompile(`^(NC|TR|CF|CA)(?:\^([-+]?\d+))?$`)
	tensorRe  = regexp.MustCompile(`^([kKtfd])\[\s*(\d+)\s*,\s*(\d+)\s*(?:,\s*(\d+)\s*)?\]$`)
	powerRe   = regexp.MustCompile(`\s*(?:\*\*|\^)\s*`)
)

// ParseFactor parses a single monomial such as "(0,1)*NC^2*TR" or "-0.5*CA".
func ParseFactor(s string) (colour.Factor, error) {
	body, neg := stripSign(s)
	if body == "" {
		return colour.Factor{}, parseErr(s, "empty monomial")
	}
	tokens, err := splitFactors(normalisePowers(body))
	if err != nil {
		return colour.Factor{}, err
	}
	f := colour.One()
	for _, tok := range tokens {
		g, err := parseAtom(tok)
		if err != nil {
			return colour.Factor{}, parseErr(s, err.Error())
		}
		f = f.Mul(g)
	}
	if neg {
		f = f.MulComplex(-1)
	}
	return f, nil
}

// ParseSum parses a "+"/"-" separated list of monomials.
func ParseSum(s string) (colour.Sum, error) {
	parts, err := splitSigned(s)
	if err != nil {
		return colour.Sum{}, err
	}
	var out colour.Sum
	for _, p := range parts {
		f, err := ParseFactor(p)
		if err != nil {
			return colour.Sum{}, err
		}
		out = out.AddFactor(f)
	}
	return out, nil
}

// ParseTensor parses one of k[i,j], K[i,j], t[i,a,b], f[i,j,k] or d[i,j,k].
func ParseTensor(s string) (colour.Tensor, error) {
	m := tensorRe.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return nil, parseErr(s, "not a tensor")
	}
	var idx []int
	for _, g := range m[2:] {
		if g == "" {
			continue
		}
		n, err := strconv.Atoi(g)
		if err != nil {
			return nil, parseErr(s, err.Error())
		}
		idx = append(idx, n)
	}
	want := 3
	if m[1] == "k" || m[1] == "K" {
		want = 2
	}
	if len(idx) != want {
		return nil, parseErr(s, fmt.Sprintf("%s takes %d indices", m[1], want))
	}
	switch m[1] {
	case "k":
		return colour.Delta{I: idx[0], J: idx[1]}, nil
	case "K":
		return colour.Delta{I: idx[0], J: idx[1], Adj: true}, nil
	case "t":
		return colour.Fundamental{I: idx[0], A: idx[1], B: idx[2]}, nil
	case "f":
		return colour.Antisymmetric{I: idx[0], J: idx[1], K: idx[2]}, nil
	default:
		return colour.Symmetric{I: idx[0], J: idx[1], K: idx[2]}, nil
	}
}

// ParseTerm parses a product of tensors with an optional monomial or
// parenthesised-sum prefactor, e.g. "-(0,1)*CA*t[1,2,3] t[1,3,4]". The term is
// validated, so index misuse is reported here.
func ParseTerm(s string) (colour.Term, error) {
	body, neg := stripSign(s)
	if body == "" {
		return colour.Term{}, parseErr(s, "empty term")
	}
	tokens, err := splitFactors(normalisePowers(body))
	if err != nil {
		return colour.Term{}, err
	}
	tm := colour.NewTerm()
	pre := colour.NewSum(colour.One())
	for _, tok := range tokens {
		switch {
		case strings.Contains(tok, "["):
			x, err := ParseTensor(tok)
			if err != nil {
				return colour.Term{}, err
			}
			tm.Push(x)
		case strings.HasPrefix(tok, "(") && !complexRe.MatchString(tok):
			if !strings.HasSuffix(tok, ")") {
				return colour.Term{}, parseErr(s, "powers of parenthesised sums are not supported")
			}
			group, err := ParseSum(tok[1 : len(tok)-1])
			if err != nil {
				return colour.Term{}, err
			}
			pre = pre.Mul(group)
		default:
			f, err := parseAtom(tok)
			if err != nil {
				return colour.Term{}, parseErr(s, err.Error())
			}
			pre = pre.MulFactor(f)
		}
	}
	if neg {
		pre = pre.MulComplex(-1)
	}
	tm.SetPrefactorSum(pre)
	if err := tm.Validate(); err != nil {
		return colour.Term{}, fmt.Errorf("parser: %q: %w", s, err)
	}
	return tm, nil
}

// ParseAmplitude parses a "+"/"-" separated sum of terms.
func ParseAmplitude(s string) (colour.Amplitude, error) {
	parts, err := splitSigned(s)
	if err != nil {
		return colour.Amplitude{}, err
	}
	var a colour.Amplitude
	for _, p := range parts {
		tm, err := ParseTerm(p)
		if err != nil {
			return colour.Amplitude{}, err
		}
		a.Add(tm)
	}
	return a, nil
}

func parseAtom(tok string) (colour.Factor, error) {
	if m := atomRe.FindStringSubmatch(tok); m != nil {
		pow := 1
		if m[2] != "" {
			var err error
			if pow, err = strconv.Atoi(m[2]); err != nil {
				return colour.Factor{}, err
			}
		}
		switch m[1] {
		case "NC":
			return colour.NewFactor(1, pow, 0, 0, 0), nil
		case "TR":
			return colour.NewFactor(1, 0, pow, 0, 0), nil
		case "CF":
			return colour.NewFactor(1, 0, 0, pow, 0), nil
		default:
			return colour.NewFactor(1, 0, 0, 0, pow), nil
		}
	}
	if m := complexRe.FindStringSubmatch(tok); m != nil {
		re, _ := strconv.ParseFloat(m[1], 64)
		im, _ := strconv.ParseFloat(m[2], 64)
		return colour.Scalar(complex(re, im)), nil
	}
	if numberRe.MatchString(tok) {
		v, err := strconv.ParseFloat(tok, 64)
		if err != nil {
			return colour.Factor{}, err
		}
		return colour.Scalar(complex(v, 0)), nil
	}
	return colour.Factor{}, fmt.Errorf("unknown token %q", tok)
}

// normalisePowers rewrites "**" as "^" and drops blanks around it.
func normalisePowers(s string) string {
	return powerRe.ReplaceAllString(s, "^")
}

// stripSign removes leading signs and reports whether they negate.
func stripSign(s string) (string, bool) {
	neg := false
	s = strings.TrimSpace(s)
	for len(s) > 0 && (s[0] == '-' || s[0] == '+') {
		neg = neg != (s[0] == '-')
		s = strings.TrimSpace(s[1:])
	}
	return s, neg
}

// splitFactors splits on "*" and blanks outside brackets and parentheses. An
// explicit "*" needs a factor on both sides.
func splitFactors(s string) ([]string, error) {
	var (
		out   []string
		depth int
		start int
		star  bool
	)
	flush := func(end int) {
		if tok := strings.TrimSpace(s[start:end]); tok != "" {
			out = append(out, tok)
			star = false
		}
		start = end + 1
	}
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '(', '[':
			depth++
		case ')', ']':
			if depth--; depth < 0 {
				return nil, parseErr(s, "unbalanced brackets")
			}
		case '*':
			if depth > 0 {
				continue
			}
			flush(i)
			if star || len(out) == 0 {
				return nil, parseErr(s, "dangling *")
			}
			star = true
		case ' ', '\t', '\n':
			if depth == 0 {
				flush(i)
			}
		}
	}
	if depth != 0 {
		return nil, parseErr(s, "unbalanced brackets")
	}
	flush(len(s))
	if star {
		return nil, parseErr(s, "dangling *")
	}
	return out, nil
}

// splitSigned splits s before every "+" or "-" that separates two summands.
// Signs of exponents, of scientific notation and inside brackets stay put.
func splitSigned(s string) ([]string, error) {
	var (
		out   []string
		depth int
		start int
	)
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '(', '[':
			depth++
		case ')', ']':
			if depth--; depth < 0 {
				return nil, parseErr(s, "unbalanced brackets")
			}
		case '+', '-':
			if depth == 0 && strings.TrimSpace(s[start:i]) != "" && separates(s, i) {
				out = append(out, s[start:i])
				start = i
			}
		}
	}
	if depth != 0 {
		return nil, parseErr(s, "unbalanced brackets")
	}
	if strings.TrimSpace(s[start:]) == "" {
		return nil, parseErr(s, "empty expression")
	}
	return append(out, s[start:]), nil
}

func separates(s string, i int) bool {
	j := i - 1
	for j >= 0 && (s[j] == ' ' || s[j] == '\t') {
		j--
	}
	if j < 0 {
		return false
	}
	switch s[j] {
	case '^', '*', '+', '-':
		return false
	case 'e', 'E':
		return j == 0 || !(s[j-1] >= '0' && s[j-1] <= '9' || s[j-1] == '.')
	}
	return true
}

func parseErr(s, msg string) error {
	return fmt.Errorf("parser: %s in %q: %w", msg, s, apperr.ErrParse)
}
