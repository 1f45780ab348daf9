package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/PavelStransky/expressions"
)

var calcCmd = &cobra.Command{
	Use:   "calc OP LEFT RIGHT",
	Short: "Apply a binary operator to two literal operands",
	Example: `  expressions calc / 7 2          # 3
  expressions calc + "[1, 2, 3]" 10
  expressions calc ... 5 1        # [5, 4, 3, 2, 1]`,
	Args: cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		op := expressions.LookupOperator(args[0])
		if op == nil {
			return fmt.Errorf("unknown operator %q (known: %s)", args[0], operatorList())
		}
		l, err := parseLiteral(args[1])
		if err != nil {
			return err
		}
		r, err := parseLiteral(args[2])
		if err != nil {
			return err
		}
		v, err := op.Evaluate(l, r)
		if err != nil {
			return report(cmd, err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), v)
		return nil
	},
}

func operatorList() string {
	var s []string
	for _, op := range expressions.Operators() {
		s = append(s, op.Symbol())
	}
	return strings.Join(s, " ")
}

var callCmd = &cobra.Command{
	Use:   "call FUNC [ARG...]",
	Short: "Call a builtin function with literal arguments",
	Example: `  expressions call log 8 2
  expressions call setglobal x 3`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		exprs := make([]*expressions.Expr, 0, len(args)-1)
		for _, a := range args[1:] {
			v, err := parseLiteral(a)
			if err != nil {
				return err
			}
			exprs = append(exprs, expressions.Const(v))
		}
		g, err := openGlobal()
		if err != nil {
			return err
		}
		guider := expressions.NewGuider(nil,
			expressions.Output(expressions.NewTextWriter(cmd.OutOrStdout())),
			expressions.UseGlobal(g),
			expressions.Prec(cfg.Precision),
			expressions.Logger(logger),
		)
		v, err := expressions.Call(args[0], exprs...).Eval(guider)
		if err != nil {
			return report(cmd, err)
		}
		if v != nil {
			fmt.Fprintln(cmd.OutOrStdout(), v)
		}
		return nil
	},
}

var funcsCmd = &cobra.Command{
	Use:   "funcs",
	Short: "List the builtin functions",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		r := expressions.Builtins()
		for _, name := range r.Names() {
			f := r.Lookup(name)
			usage := name
			if d, ok := f.(*expressions.FunctionDefinition); ok {
				usage = d.Usage()
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%-40s %s\n", usage, f.Help())
		}
		return nil
	},
}
