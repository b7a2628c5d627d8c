package main

import (
	"fmt"
	"io"
	"os"

	j "github.com/goccy/go-json"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	schemarpc "github.com/reoring/schemarpc"
	"github.com/reoring/schemarpc/compiler"
	"github.com/reoring/schemarpc/decl"
	"github.com/reoring/schemarpc/internal/gen"
	"github.com/reoring/schemarpc/jsonschema"
	"github.com/reoring/schemarpc/manifest"
	"github.com/reoring/schemarpc/middleware"
	"github.com/reoring/schemarpc/validator"
)

func newCompileCommand(root *rootOptions) *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "compile <declarations>",
		Short: "Compile a declaration file (.yaml, .json or .cue) into a manifest",
		Long: `Compile a declaration file into a manifest.

The manifest is written as YAML when the output path ends in .yaml or .yml
and as JSON otherwise. Without -o it is printed to stdout as JSON.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := decl.LoadFile(args[0])
			if err != nil {
				return err
			}
			res, err := compiler.Compile(f, compiler.WithLogger(root.log))
			if err != nil {
				return err
			}
			m, err := manifest.Assemble(res.Functions, res.Registry)
			if err != nil {
				return err
			}
			var data []byte
			if isYAML(output) {
				data, err = m.YAML()
			} else {
				data, err = m.JSON()
			}
			if err != nil {
				return err
			}
			if err := writeOutput(cmd, output, data); err != nil {
				return err
			}
			fp, err := m.Fingerprint()
			if err != nil {
				return err
			}
			root.log.WithFields(logrus.Fields{
				"functions":   len(m.RPCFunctions),
				"types":       m.Registry.Len(),
				"fingerprint": fp,
			}).Info("manifest compiled")
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file")
	return cmd
}

type validateOptions struct {
	Manifest string
	Function string
	Return   bool
}

func newValidateCommand(root *rootOptions) *cobra.Command {
	opts := &validateOptions{}
	cmd := &cobra.Command{
		Use:   "validate [body.json]",
		Short: "Validate a JSON request body (or return value) against a function",
		Long: `Validate a JSON document against the parameters of a manifest function.

The document is read from the given file, or from stdin when the file is
omitted or "-". On failure the errors are printed as {"errors": [...]} and
the command exits with status 1.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := loadManifest(opts.Manifest)
			if err != nil {
				return err
			}
			fn, ok := m.Lookup(opts.Function)
			if !ok {
				return fmt.Errorf("unknown function %q", opts.Function)
			}
			var r io.Reader = cmd.InOrStdin()
			if len(args) == 1 && args[0] != "-" {
				file, err := os.Open(args[0])
				if err != nil {
					return err
				}
				defer file.Close()
				r = file
			}
			body, err := schemarpc.DecodeJSONReader(r, root.cfg.Decode)
			if err != nil {
				if errs, ok := schemarpc.AsValidationErrors(err); ok {
					return printErrors(cmd, errs)
				}
				return err
			}
			v, err := validator.ForManifest(m, validator.WithLogger(root.log))
			if err != nil {
				return err
			}
			var errs schemarpc.ValidationErrors
			if opts.Return {
				errs = v.ValidateReturn(fn, body).Errors
			} else {
				errs = v.ValidateParameters(fn, body).Errors
			}
			if len(errs) > 0 {
				return printErrors(cmd, errs)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "ok")
			return nil
		},
	}
	cmd.Flags().StringVarP(&opts.Manifest, "manifest", "m", "", "manifest file")
	cmd.Flags().StringVarP(&opts.Function, "function", "f", "", "qualified function name")
	cmd.Flags().BoolVar(&opts.Return, "return", false, "validate a return value instead of parameters")
	_ = cmd.MarkFlagRequired("manifest")
	_ = cmd.MarkFlagRequired("function")
	return cmd
}

func printErrors(cmd *cobra.Command, errs schemarpc.ValidationErrors) error {
	data, err := j.MarshalIndent(middleware.ErrorPayload(errs), "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(data))
	return errInvalid
}

func newGenCommand(root *rootOptions) *cobra.Command {
	var manifestPath, pkg, output string
	cmd := &cobra.Command{
		Use:   "gen",
		Short: "Generate Go validators for a manifest",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := loadManifest(manifestPath)
			if err != nil {
				return err
			}
			src, err := gen.RenderFile(gen.File{Package: pkg, Manifest: m, Source: manifestPath})
			if err != nil {
				return err
			}
			root.log.WithField("package", pkg).Debug("validators generated")
			return writeOutput(cmd, output, src)
		},
	}
	cmd.Flags().StringVarP(&manifestPath, "manifest", "m", "", "manifest file")
	cmd.Flags().StringVarP(&pkg, "package", "p", "validators", "package name of the generated file")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file")
	_ = cmd.MarkFlagRequired("manifest")
	return cmd
}

func newJSONSchemaCommand(root *rootOptions) *cobra.Command {
	var manifestPath, output string
	cmd := &cobra.Command{
		Use:   "jsonschema",
		Short: "Export a manifest as JSON Schema (draft 2020-12)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := loadManifest(manifestPath)
			if err != nil {
				return err
			}
			data, err := jsonschema.FromManifest(m).JSON()
			if err != nil {
				return err
			}
			root.log.WithField("definitions", m.Registry.Len()).Debug("json schema exported")
			return writeOutput(cmd, output, data)
		},
	}
	cmd.Flags().StringVarP(&manifestPath, "manifest", "m", "", "manifest file")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file")
	_ = cmd.MarkFlagRequired("manifest")
	return cmd
}
