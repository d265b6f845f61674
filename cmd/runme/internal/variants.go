package internal

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/goplus/runme/internal/driver"
	"github.com/goplus/runme/internal/env"
	"github.com/goplus/runme/internal/runner"
)

var variantsYAML bool

var variantsCmd = &cobra.Command{
	Use:   "variants",
	Short: "List the build variants",
	Long: `Variants prints every build variant with its output directory and the
cmake command line that configures it. With --yaml the variant set is printed
in the format accepted by --file.`,
	Args: usageArgs(cobra.NoArgs),
	RunE: runVariants,
}

func init() {
	variantsCmd.Flags().BoolVar(&variantsYAML, "yaml", false, "Print the variant set as YAML")
	rootCmd.AddCommand(variantsCmd)
}

func runVariants(cmd *cobra.Command, args []string) error {
	set, err := loadVariants()
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()

	if variantsYAML {
		data, err := set.Marshal()
		if err != nil {
			return err
		}
		_, err = out.Write(data)
		return err
	}

	for _, t := range driver.New(set, &runner.Runner{DryRun: true}).Targets() {
		configureArgs, err := t.CMake.ConfigureArgs()
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "%s (%s)\n", t.Variant.Name, t.CMake.OutputDir())
		fmt.Fprintf(out, "  configure: %s\n", runner.Format(env.Tool(env.CMake), configureArgs...))
		if t.Variant.Toolchain != "" {
			fmt.Fprintf(out, "  toolchain: %s\n", t.Variant.Toolchain)
		}
	}
	return nil
}
