package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/urfave/cli/v3"

	"github.com/starford/sunc/internal"
	"github.com/starford/sunc/internal/evalservice"
	"github.com/starford/sunc/internal/models"
	"github.com/starford/sunc/internal/parser"
)

var jsonFlag = &cli.BoolFlag{
	Name:  "json",
	Usage: "Print the result as JSON",
}

// exec loads the configuration and runs fn against a fresh service.
func exec(ctx context.Context, cmd *cli.Command, fn func(context.Context, *evalservice.Service) error) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	return internal.Exec(ctx, fn, internal.WithConfig(cfg))
}

func args(cmd *cli.Command, n int) ([]string, error) {
	if cmd.NArg() != n {
		return nil, fmt.Errorf("%s takes %d argument(s), got %d", cmd.Name, n, cmd.NArg())
	}
	return cmd.Args().Slice(), nil
}

func evalCommand() *cli.Command {
	return &cli.Command{
		Name:      "eval",
		Usage:     "Evaluate a colour expression",
		ArgsUsage: "EXPRESSION",
		Flags:     []cli.Flag{jsonFlag},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			a, err := args(cmd, 1)
			if err != nil {
				return err
			}
			return exec(ctx, cmd, func(ctx context.Context, svc *evalservice.Service) error {
				ev, err := svc.Evaluate(ctx, a[0], "")
				if err != nil {
					return err
				}
				return printEvaluation(os.Stdout, ev, cmd.Bool("json"))
			})
		},
	}
}

func scalarProductCommand() *cli.Command {
	return &cli.Command{
		Name:      "scprod",
		Usage:     "Compute the scalar product <LHS|RHS>",
		ArgsUsage: "LHS RHS",
		Flags:     []cli.Flag{jsonFlag},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			a, err := args(cmd, 2)
			if err != nil {
				return err
			}
			return exec(ctx, cmd, func(ctx context.Context, svc *evalservice.Service) error {
				ev, err := svc.ScalarProduct(ctx, a[0], a[1], "")
				if err != nil {
					return err
				}
				return printEvaluation(os.Stdout, ev, cmd.Bool("json"))
			})
		},
	}
}

func multiplyCommand() *cli.Command {
	return &cli.Command{
		Name:      "mul",
		Usage:     "Evaluate the product LHS*RHS",
		ArgsUsage: "LHS RHS",
		Flags:     []cli.Flag{jsonFlag},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			a, err := args(cmd, 2)
			if err != nil {
				return err
			}
			return exec(ctx, cmd, func(ctx context.Context, svc *evalservice.Service) error {
				ev, err := svc.Multiply(ctx, a[0], a[1], "")
				if err != nil {
					return err
				}
				return printEvaluation(os.Stdout, ev, cmd.Bool("json"))
			})
		},
	}
}

func conjugateCommand() *cli.Command {
	return &cli.Command{
		Name:      "hconj",
		Usage:     "Print the hermitian conjugate of an amplitude",
		ArgsUsage: "EXPRESSION",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			a, err := args(cmd, 1)
			if err != nil {
				return err
			}
			return exec(ctx, cmd, func(ctx context.Context, svc *evalservice.Service) error {
				res, err := svc.Conjugate(ctx, a[0])
				if err != nil {
					return err
				}
				_, err = fmt.Fprintln(os.Stdout, res.Conjugate)
				return err
			})
		},
	}
}

func matrixCommand() *cli.Command {
	return &cli.Command{
		Name:      "matrix",
		Usage:     "Compute the colour matrix of a basis given as arguments or a worksheet file",
		ArgsUsage: "[BASIS...]",
		Flags: []cli.Flag{
			jsonFlag,
			&cli.StringFlag{
				Name:    "file",
				Aliases: []string{"f"},
				Usage:   "Read the basis and mode from a worksheet",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			basis := cmd.Args().Slice()
			var mode models.Mode
			if file := cmd.String("file"); file != "" {
				data, err := os.ReadFile(file)
				if err != nil {
					return err
				}
				ws, err := parser.ParseWorksheet(data)
				if err != nil {
					return fmt.Errorf("%s: %w", file, err)
				}
				basis = append(ws.Basis, basis...)
				if ws.LeadingColour {
					mode = models.ModeLC
				}
			}
			return exec(ctx, cmd, func(ctx context.Context, svc *evalservice.Service) error {
				m, err := svc.ColourMatrix(ctx, basis, mode)
				if err != nil {
					return err
				}
				return printMatrix(os.Stdout, m, cmd.Bool("json"))
			})
		},
	}
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printEvaluation(w io.Writer, ev *models.Evaluation, asJSON bool) error {
	if asJSON {
		return printJSON(w, ev)
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "expression\t%s\n", ev.Expression)
	fmt.Fprintf(tw, "mode\t%s\n", ev.Mode)
	fmt.Fprintf(tw, "result\t%s\n", ev.Result)
	fmt.Fprintf(tw, "with TR\t%s\n", ev.ResultTR)
	fmt.Fprintf(tw, "value\t%s\n", ev.Value)
	fmt.Fprintf(tw, "leading colour\t%s\n", ev.ValueLC)
	fmt.Fprintf(tw, "large N\t%s\n", ev.ValueLargeN)
	if ev.Warning != "" {
		fmt.Fprintf(tw, "warning\t%s\n", ev.Warning)
	}
	return tw.Flush()
}

func printMatrix(w io.Writer, m *models.Matrix, asJSON bool) error {
	if asJSON {
		return printJSON(w, m)
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', tabwriter.AlignRight)
	for i, b := range m.Basis {
		fmt.Fprintf(w, "b%d = %s\n", i, b)
	}
	for _, row := range m.Entries {
		for _, e := range row {
			fmt.Fprintf(tw, "%s\t", e.Value)
		}
		fmt.Fprintln(tw)
	}
	return tw.Flush()
}
