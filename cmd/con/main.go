// Command con encodes and decodes CON (Compact Object Notation) documents
// and reports the token savings CON offers over equivalent JSON.
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"roseh.moe/pkg/con"
)

// flagOptions holds the CLI flag values shared by encode and decode,
// mirroring the small Flags+Config split MacroPower-x's log/config.go uses
// for its own pflag-backed settings.
type flagOptions struct {
	delimiter        string
	strict           bool
	pretty           bool
	minTabularLength int
}

func (f *flagOptions) registerFlags(flags *pflag.FlagSet) {
	flags.StringVar(&f.delimiter, "delimiter", ",", "array/field delimiter: one of , (comma), tab, or |")
	flags.BoolVar(&f.strict, "strict", false, "enable strict indentation and count-assertion checks")
	flags.BoolVar(&f.pretty, "pretty", false, "reserved for a future layout; currently has no effect")
	flags.IntVar(&f.minTabularLength, "min-tabular-length", 2, "minimum element count for the tabular array shape")
}

func (f *flagOptions) options() (con.Options, error) {
	var delim con.Delimiter
	switch f.delimiter {
	case ",", "comma", "":
		delim = con.DelimiterComma
	case "tab", "\t":
		delim = con.DelimiterTab
	case "|", "pipe":
		delim = con.DelimiterPipe
	default:
		return con.Options{}, fmt.Errorf("unknown delimiter %q", f.delimiter)
	}
	return con.Options{
		Delimiter:        delim,
		Pretty:           f.pretty,
		Strict:           f.strict,
		StrictArrays:     f.strict,
		MinTabularLength: f.minTabularLength,
		Logger:           con.NewLogger(),
	}, nil
}

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "con",
		Short:         "Encode and decode Compact Object Notation documents",
		SilenceErrors: true,
		SilenceUsage:  true,
	}
	root.AddCommand(newEncodeCmd(), newDecodeCmd(), newTokensCmd())
	return root
}

func newEncodeCmd() *cobra.Command {
	var f flagOptions
	cmd := &cobra.Command{
		Use:   "encode [file]",
		Short: "Encode JSON input as CON",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := f.options()
			if err != nil {
				return err
			}
			data, err := readInput(cmd, args)
			if err != nil {
				return err
			}
			var v any
			if err := json.Unmarshal(data, &v); err != nil {
				return fmt.Errorf("decoding JSON input: %w", err)
			}
			out, err := con.Serialize(v, opts)
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write([]byte(out))
			return err
		},
	}
	f.registerFlags(cmd.Flags())
	return cmd
}

func newDecodeCmd() *cobra.Command {
	var f flagOptions
	cmd := &cobra.Command{
		Use:   "decode [file]",
		Short: "Decode a CON document to JSON",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := f.options()
			if err != nil {
				return err
			}
			data, err := readInput(cmd, args)
			if err != nil {
				return err
			}
			v, err := con.Deserialize(string(data), opts)
			if err != nil {
				return err
			}
			out, err := json.MarshalIndent(jsonOf(v), "", "  ")
			if err != nil {
				return err
			}
			out = append(out, '\n')
			_, err = cmd.OutOrStdout().Write(out)
			return err
		},
	}
	f.registerFlags(cmd.Flags())
	return cmd
}

func newTokensCmd() *cobra.Command {
	var f flagOptions
	cmd := &cobra.Command{
		Use:   "tokens [file]",
		Short: "Report estimated token savings of CON versus JSON for the given input",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := f.options()
			if err != nil {
				return err
			}
			data, err := readInput(cmd, args)
			if err != nil {
				return err
			}
			var v any
			if err := json.Unmarshal(data, &v); err != nil {
				return fmt.Errorf("decoding JSON input: %w", err)
			}
			conText, err := con.Serialize(v, opts)
			if err != nil {
				return err
			}
			normalized, err := con.Normalize(v)
			if err != nil {
				return err
			}
			jsonBytes, err := json.Marshal(jsonOf(normalized))
			if err != nil {
				return err
			}
			savings := con.CountTokens(conText, string(jsonBytes), nil)
			out, err := json.MarshalIndent(savings, "", "  ")
			if err != nil {
				return err
			}
			out = append(out, '\n')
			_, err = cmd.OutOrStdout().Write(out)
			return err
		},
	}
	f.registerFlags(cmd.Flags())
	return cmd
}

func readInput(cmd *cobra.Command, args []string) ([]byte, error) {
	if len(args) == 0 || args[0] == "-" {
		return io.ReadAll(cmd.InOrStdin())
	}
	return os.ReadFile(args[0])
}

// jsonOf renders a decoded con.Value as a plain any tree for JSON output.
func jsonOf(v con.Value) any {
	switch v.Kind() {
	case con.KindNull:
		return nil
	case con.KindBool:
		return v.Bool()
	case con.KindNumber:
		return v.Num()
	case con.KindString:
		return v.Str()
	case con.KindArray:
		elems := v.Elements()
		out := make([]any, len(elems))
		for i, e := range elems {
			out[i] = jsonOf(e)
		}
		return out
	case con.KindObject:
		out := make(map[string]any, v.Len())
		for _, p := range v.Pairs() {
			out[p.Key] = jsonOf(p.Value)
		}
		return out
	default:
		return nil
	}
}
