package cmd

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var errLookupsFailed = errors.New("one or more lookups failed")

// newProductCmd creates the 'product' subcommand. Each argument is a product
// URL or a bare identifier; one JSON record is printed per argument.
func newProductCmd() *cobra.Command {
	var strict bool
	cmd := &cobra.Command{
		Use:   "product <url|id>...",
		Short: "Fetches product details",
		Long: `Fetches one product page per argument and prints its title, price,
currency, image URL and brand as a JSON object per line. Fields that could
not be extracted, and every field of a failed lookup, are null.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			appInstance, err := resolveApp(cmd.Context())
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			failed := 0
			for _, arg := range args {
				p, err := appInstance.Lookup(cmd.Context(), arg)
				if err != nil {
					failed++
					appInstance.Logger().Warn("product lookup failed", zap.String("input", arg), zap.Error(err))
				}
				if err := enc.Encode(p); err != nil {
					return fmt.Errorf("write record: %w", err)
				}
			}
			if strict && failed > 0 {
				return fmt.Errorf("%w: %d of %d", errLookupsFailed, failed, len(args))
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&strict, "strict", false, "exit non-zero when any lookup fails")
	return cmd
}
