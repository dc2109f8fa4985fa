package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/AlecAivazis/survey/v2"

	"github.com/Arconz/SnipeIT-Tools/config"
	"github.com/Arconz/SnipeIT-Tools/document"
	"github.com/Arconz/SnipeIT-Tools/inventory"
	"github.com/Arconz/SnipeIT-Tools/snipeit"
)

// InventoryOptions contains options for the 'inventory' command.
type InventoryOptions struct {
	ConfigPath string
	UserQuery  string
	OutputDir  string
}

// InventoryCommand implements the 'inventory' command: it renders one
// signable loan agreement PDF per matched user and patches the
// signature fields into each file.
func InventoryCommand(args []string) {
	invFlags := flag.NewFlagSet("inventory", flag.ExitOnError)

	var opts InventoryOptions
	invFlags.StringVar(&opts.ConfigPath, "config", "config.yml", "Path to the configuration file")
	invFlags.StringVar(&opts.UserQuery, "user", "", "User name, email, or ID (empty for all users)")
	invFlags.StringVar(&opts.OutputDir, "out", "", "Output directory (overrides the configured one)")

	invFlags.Usage = func() {
		fmt.Printf("Usage: %s inventory [options]\n\n", os.Args[0])
		fmt.Println("Generate signable equipment loan agreements from Snipe-IT data.")
		fmt.Println("")
		fmt.Println("Options:")
		invFlags.PrintDefaults()
	}

	if err := invFlags.Parse(args[2:]); err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing flags: %v\n", err)
		osExit(1)
	}

	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		osExit(1)
		return
	}
	if opts.OutputDir != "" {
		cfg.OutputDir = opts.OutputDir
	}

	if opts.UserQuery == "" {
		prompt := &survey.Input{
			Message: "Enter user name, email, or ID (leave empty for all users):",
		}
		if err := survey.AskOne(prompt, &opts.UserQuery); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			osExit(1)
			return
		}
	}

	if err := runInventory(cfg, strings.TrimSpace(opts.UserQuery)); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		osExit(1)
	}
}

func runInventory(cfg *config.Config, userQuery string) error {
	ctx := context.Background()
	client := snipeit.NewClient(cfg.APIEndpoint, cfg.APIToken)

	users, err := client.Users(ctx)
	if err != nil {
		return fmt.Errorf("listing users: %w", err)
	}
	matched := snipeit.MatchUsers(users, userQuery)
	if len(matched) == 0 {
		fmt.Println("No matching users found")
		return nil
	}

	for _, user := range matched {
		processUser(ctx, client, cfg, user)
		fmt.Println(strings.Repeat("=", 105))
	}
	return nil
}

// processUser runs the full per-user pipeline. Failures degrade to
// sentinel rows or skipped signature fields; they never abort the
// batch.
func processUser(ctx context.Context, client *snipeit.Client, cfg *config.Config, user snipeit.User) {
	email := strings.TrimSpace(user.Email)
	if email == "" {
		email = cfg.NoEmail
	}

	assetRows := fetchAssetRows(ctx, client, user.ID)
	accessoryRows := fetchAccessoryRows(ctx, client, user.ID)

	doc, err := document.Render(document.Params{
		UserName:          user.Name,
		UserEmail:         email,
		UserID:            user.ID,
		AssetRows:         assetRows,
		AccessoryRows:     accessoryRows,
		Issuer:            cfg.Issuer,
		IssuerBC:          cfg.IssuerBC,
		IssuerInstitution: cfg.IssuerInstitution,
		IssuerDepartment:  cfg.IssuerDepartment,
		Telephone:         cfg.Telephone,
		AddressOptions:    cfg.AddressOptions,
		AUPURL:            cfg.AUPURL,
	}, cfg.OutputDir)
	if err != nil {
		fmt.Println("Error:", err)
		return
	}
	fmt.Printf("PDF %s created successfully\n", document.Filename(user.Name))

	if err := document.AddSignatureFields(doc.FilePath, document.PatchesFor(doc)); err != nil {
		// The rendered document stays usable without signature fields.
		fmt.Println("Error:", err)
		return
	}
	fmt.Println("Signature fields added successfully.")
}

func fetchAssetRows(ctx context.Context, client *snipeit.Client, userID int64) []inventory.AssetRow {
	assets, err := client.UserAssets(ctx, userID)
	switch {
	case errors.Is(err, snipeit.ErrMissingRows):
		fmt.Println("No assets found in the asset data set")
		return inventory.AssetErrorRows()
	case err != nil:
		fmt.Printf("An error occurred while retrieving assets: %v\n", err)
		return inventory.AssetErrorRows()
	case len(assets) == 0:
		fmt.Println("No assets found for this user")
	default:
		fmt.Println("Assets found for this user")
	}
	return inventory.BuildAssetRows(assets)
}

func fetchAccessoryRows(ctx context.Context, client *snipeit.Client, userID int64) []inventory.AccessoryRow {
	accessories, err := client.UserAccessories(ctx, userID)
	switch {
	case errors.Is(err, snipeit.ErrMissingRows):
		fmt.Println("No accessories found in the accessory data")
		return inventory.AccessoryErrorRows()
	case err != nil:
		fmt.Printf("An error occurred while retrieving accessories: %v\n", err)
		return inventory.AccessoryErrorRows()
	case len(accessories) == 0:
		fmt.Println("No accessories found for this user")
	default:
		fmt.Println("Accessories found for this user")
	}
	return inventory.BuildAccessoryRows(accessories)
}
