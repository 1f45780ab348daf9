package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/PavelStransky/expressions"
	"github.com/PavelStransky/expressions/ie"
)

var dumpCmd = &cobra.Command{
	Use:   "dump FILE",
	Short: "Print the values of a record file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		i, err := ie.Open(args[0], expressions.Factory())
		if err != nil {
			return err
		}
		defer i.Close()
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "# mode %s, version %d", i.Mode(), i.Version())
		if name := i.VersionName(); name != "" {
			fmt.Fprintf(out, " (%s)", name)
		}
		fmt.Fprintln(out)
		for {
			v, err := expressions.ReadValue(i)
			if err != nil {
				return report(cmd, err)
			}
			if v == nil {
				return nil
			}
			fmt.Fprintf(out, "%s: %v\n", expressions.TypeName(v), v)
		}
	},
}

var convertMode string

var convertCmd = &cobra.Command{
	Use:   "convert IN OUT",
	Short: "Rewrite a record file in another mode",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		mode, err := ie.ParseMode(convertMode)
		if err != nil {
			return err
		}
		n, err := convert(args[0], args[1], mode)
		if err != nil {
			return report(cmd, err)
		}
		logger.Info("converted", zap.String("in", args[0]), zap.String("out", args[1]),
			zap.Stringer("mode", mode), zap.Int("values", n))
		return nil
	},
}

// convert copies every value of one file into another.
func convert(in, out string, mode ie.Mode) (n int, err error) {
	i, err := ie.Open(in, expressions.Factory())
	if err != nil {
		return 0, err
	}
	defer i.Close()
	e, err := ie.Create(out, mode)
	if err != nil {
		return 0, err
	}
	defer func() {
		err = errors.Join(err, e.Close())
	}()
	for {
		v, err := expressions.ReadValue(i)
		if err != nil {
			return n, err
		}
		if v == nil {
			return n, nil
		}
		if err := expressions.WriteValue(e, v); err != nil {
			return n, err
		}
		n++
	}
}
