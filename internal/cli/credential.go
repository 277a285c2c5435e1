package cli

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/inkport/inkport/internal/vault"
)

// CredentialCommand manages vault credentials scoped to a project.
func CredentialCommand(app *App) *cobra.Command {
	var target string
	var profile string
	var kind string

	cmd := &cobra.Command{
		Use:   "credential",
		Short: "Manage stored export credentials",
		Long: `Get, set or delete a credential in the OS secret store. Credentials are
scoped to the project that owns the given file, so the same target and
profile in two different projects store two different secrets.`,
	}

	cmd.PersistentFlags().StringVarP(&target, "target", "t", "", "export target the credential belongs to")
	cmd.PersistentFlags().StringVarP(&profile, "profile", "p", "", "named profile (optional)")
	cmd.PersistentFlags().StringVarP(&kind, "kind", "k", "password", "credential kind: password or token")
	_ = cmd.MarkPersistentFlagRequired("target")

	parseKind := func() (vault.Kind, error) {
		switch vault.Kind(kind) {
		case vault.KindPassword, vault.KindToken:
			return vault.Kind(kind), nil
		}
		return "", fmt.Errorf("unknown credential kind %q", kind)
	}

	getCmd := &cobra.Command{
		Use:   "get <file>",
		Short: "Print a stored credential",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			parsedKind, err := parseKind()
			if err != nil {
				return err
			}
			filePath, err := filepath.Abs(args[0])
			if err != nil {
				return err
			}
			value, found, err := app.Vault.Get(filePath, target, profile, parsedKind)
			if err != nil {
				return err
			}
			if !found {
				return errors.New("no credential stored")
			}
			fmt.Println(value)
			return nil
		},
	}

	setCmd := &cobra.Command{
		Use:   "set <file> <value>",
		Short: "Store a credential",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			parsedKind, err := parseKind()
			if err != nil {
				return err
			}
			filePath, err := filepath.Abs(args[0])
			if err != nil {
				return err
			}
			if err := app.Vault.Set(filePath, target, profile, parsedKind, args[1]); err != nil {
				return err
			}
			fmt.Println("Credential stored")
			return nil
		},
	}

	deleteCmd := &cobra.Command{
		Use:   "delete <file>",
		Short: "Delete a stored credential",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			parsedKind, err := parseKind()
			if err != nil {
				return err
			}
			filePath, err := filepath.Abs(args[0])
			if err != nil {
				return err
			}
			if err := app.Vault.Delete(filePath, target, profile, parsedKind); err != nil {
				return err
			}
			fmt.Println("Credential deleted")
			return nil
		},
	}

	cmd.AddCommand(getCmd, setCmd, deleteCmd)
	return cmd
}
