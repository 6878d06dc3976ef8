package app

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/pkgdrift/internal/output"
	"github.com/blackwell-systems/pkgdrift/internal/pkgutil"
	"github.com/blackwell-systems/pkgdrift/internal/reconcile"
)

var (
	filesFlagPackageID string
	filesFlagVolume    string

	filesCmd = &cobra.Command{
		Use:   "files",
		Short: "List the files a package owns",
		Long: `List every file recorded in a package's receipt, as absolute paths
rooted at the receipt's install location.

This is the same manifest a removal would delete, so it is the list to
review before enabling confident_to_remove.`,
		Example: `  pkgdrift files --package-id com.agilebits.pkg.onepassword`,
		RunE: runFiles,
	}
)

func init() {
	filesCmd.Flags().StringVar(&filesFlagPackageID, "package-id", "", "receipt package id (required)")
	filesCmd.Flags().StringVar(&filesFlagVolume, "volume", "", "volume to inspect (default: / as root, $HOME otherwise)")
	filesCmd.MarkFlagRequired("package-id")

	RootCmd.AddCommand(filesCmd)
}

func runFiles(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	volume := filesFlagVolume
	if volume == "" {
		priv := reconcile.CurrentPrivilege()
		volume = "/"
		if !priv.Root {
			volume = priv.Home
		}
	}

	trail := pkgutil.NewAuditTrail()
	prober := pkgutil.NewProber(&pkgutil.ExecRunner{Trail: trail}, loadTool(cfg))

	files, err := prober.Files(filesFlagPackageID, volume)
	if err != nil {
		return err
	}

	fmt.Print(output.RenderManifest(filesFlagPackageID, files))
	return nil
}
