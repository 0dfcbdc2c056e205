package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"svelab/internal/driver"
	"svelab/internal/numeric"
	"svelab/internal/sema"
	"svelab/internal/symbols"
	"svelab/internal/version"
)

var dumpCmd = &cobra.Command{
	Use:   "dump",
	Short: "Print the elaborated hierarchy",
	RunE: func(cmd *cobra.Command, args []string) error {
		manifest, err := loadManifest(cmd)
		if err != nil {
			return err
		}
		res, err := driver.Run(context.Background(), manifest)
		if err != nil {
			return err
		}

		root := res.Compilation.GetRoot()
		for _, inst := range root.TopInstances {
			dumpSymbol(cmd, res, inst, 0)
		}
		return nil
	},
}

func dumpSymbol(cmd *cobra.Command, res *driver.Result, sym symbols.Symbol, depth int) {
	indent := strings.Repeat("  ", depth)

	switch s := sym.(type) {
	case *symbols.InstanceSymbol:
		fmt.Fprintf(cmd.OutOrStdout(), "%s%s %s (%s)\n", indent, s.Definition.DefKind, s.Name(), s.Definition.Name())
		for _, child := range s.AsScope().Members() {
			dumpSymbol(cmd, res, child, depth+1)
		}
	case *symbols.InstanceArraySymbol:
		fmt.Fprintf(cmd.OutOrStdout(), "%sinstance array %s %s\n", indent, s.Name(), s.Range)
		for _, child := range s.Elements {
			dumpSymbol(cmd, res, child, depth+1)
		}
	case *symbols.GenerateBlockSymbol:
		label := s.Name()
		if label == "" {
			label = "<anonymous>"
		}
		if s.Uninstantiated {
			fmt.Fprintf(cmd.OutOrStdout(), "%sgenerate %s (uninstantiated)\n", indent, label)
			return
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%sgenerate %s\n", indent, label)
		for _, child := range s.AsScope().Members() {
			dumpSymbol(cmd, res, child, depth+1)
		}
	case *symbols.GenerateBlockArraySymbol:
		fmt.Fprintf(cmd.OutOrStdout(), "%sgenerate array %s\n", indent, s.Name())
		for _, b := range s.Blocks {
			dumpSymbol(cmd, res, b, depth+1)
		}
	case *symbols.ParameterSymbol:
		v := sema.ParameterValue(res.Compilation, s)
		if v.Kind() == numeric.KindInvalid {
			fmt.Fprintf(cmd.OutOrStdout(), "%sparameter %s = <error>\n", indent, s.Name())
			return
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%sparameter %s = %s\n", indent, s.Name(), v)
	case *symbols.PortSymbol:
		fmt.Fprintf(cmd.OutOrStdout(), "%sport %s %s : %s\n", indent, s.Dir, s.Name(),
			sema.TypeOf(res.Compilation, s))
	case *symbols.NetSymbol:
		fmt.Fprintf(cmd.OutOrStdout(), "%snet %s %s : %s\n", indent, s.NetType, s.Name(),
			sema.TypeOf(res.Compilation, s))
	case *symbols.VariableSymbol:
		fmt.Fprintf(cmd.OutOrStdout(), "%svar %s : %s\n", indent, s.Name(),
			sema.TypeOf(res.Compilation, s))
	case *symbols.SubroutineSymbol:
		kind := "function"
		if s.IsTask {
			kind = "task"
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s%s %s\n", indent, kind, s.Name())
	}
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintln(cmd.OutOrStdout(), "svelab "+version.Full())
	},
}
