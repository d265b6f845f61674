package internal

import (
	"github.com/spf13/cobra"

	"github.com/goplus/runme/internal/doctor"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check that cmake, ninja and the toolchain files are available",
	Args:  usageArgs(cobra.NoArgs),
	RunE:  runDoctor,
}

func init() {
	rootCmd.AddCommand(doctorCmd)
}

func runDoctor(cmd *cobra.Command, args []string) error {
	set, err := loadVariants()
	if err != nil {
		return err
	}

	report := doctor.New(set).Run(cmd.Context())
	if !report.OK() {
		return &envError{failed: len(report.Failed())}
	}
	return nil
}
