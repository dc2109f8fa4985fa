package cli

import (
	"context"
	"flag"
	"fmt"
	"html"
	"io"
	"os"
	"strings"

	"github.com/AlecAivazis/survey/v2"

	"github.com/Arconz/SnipeIT-Tools/config"
	"github.com/Arconz/SnipeIT-Tools/snipeit"
)

// TransferOptions contains options for the 'transfer' command.
type TransferOptions struct {
	ConfigPath string
	Sender     string
	Receiver   string
	Yes        bool
}

// TransferCommand implements the 'transfer' command: every accessory
// currently checked out to the sender is checked in and checked out
// again to the receiver.
func TransferCommand(args []string) {
	transferFlags := flag.NewFlagSet("transfer", flag.ExitOnError)

	var opts TransferOptions
	transferFlags.StringVar(&opts.ConfigPath, "config", "config.yml", "Path to the configuration file")
	transferFlags.StringVar(&opts.Sender, "from", "", "Sender's name, email, or ID")
	transferFlags.StringVar(&opts.Receiver, "to", "", "Receiver's name, email, or ID")
	transferFlags.BoolVar(&opts.Yes, "yes", false, "Skip the confirmation prompt")

	transferFlags.Usage = func() {
		fmt.Printf("Usage: %s transfer [options]\n\n", os.Args[0])
		fmt.Println("Move all checked-out accessories from one user to another.")
		fmt.Println("")
		fmt.Println("Options:")
		transferFlags.PrintDefaults()
	}

	if err := transferFlags.Parse(args[2:]); err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing flags: %v\n", err)
		osExit(1)
	}

	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		osExit(1)
		return
	}

	if opts.Sender == "" {
		if err := survey.AskOne(&survey.Input{Message: "Enter sender's name, email, or ID:"}, &opts.Sender); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			osExit(1)
			return
		}
	}
	if opts.Receiver == "" {
		if err := survey.AskOne(&survey.Input{Message: "Enter receiver's name, email, or ID:"}, &opts.Receiver); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			osExit(1)
			return
		}
	}

	if err := runTransfer(cfg, strings.TrimSpace(opts.Sender), strings.TrimSpace(opts.Receiver), opts.Yes); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		osExit(1)
	}
}

func runTransfer(cfg *config.Config, senderQuery, receiverQuery string, skipConfirm bool) error {
	ctx := context.Background()
	client := snipeit.NewClient(cfg.APIEndpoint, cfg.APIToken)

	users, err := client.Users(ctx)
	if err != nil {
		return fmt.Errorf("listing users: %w", err)
	}

	sender, err := snipeit.FindUser(users, senderQuery)
	if err != nil {
		return fmt.Errorf("resolving sender: %w", err)
	}
	receiver, err := snipeit.FindUser(users, receiverQuery)
	if err != nil {
		return fmt.Errorf("resolving receiver: %w", err)
	}

	fmt.Printf("Move accessories from %s\n", html.UnescapeString(sender.Name))
	fmt.Printf("To: %s\n", html.UnescapeString(receiver.Name))

	assets, err := client.UserAssets(ctx, sender.ID)
	if err != nil {
		return fmt.Errorf("listing sender assets: %w", err)
	}
	accessories, err := client.UserAccessories(ctx, sender.ID)
	if err != nil {
		return fmt.Errorf("listing sender accessories: %w", err)
	}
	writeSenderHoldings(os.Stdout, assets, accessories)
	if len(accessories) == 0 {
		return nil
	}

	if !skipConfirm {
		confirmed := false
		if err := survey.AskOne(&survey.Confirm{Message: "Is this correct?"}, &confirmed); err != nil {
			return err
		}
		if !confirmed {
			fmt.Println("Exiting...")
			return nil
		}
	}

	for _, acc := range accessories {
		if err := transferAccessory(ctx, client, acc, sender.ID, receiver.ID); err != nil {
			// Checkin without a matching checkout leaves the unit
			// unassigned; there is no compensation, so surface it and
			// keep going with the remaining accessories.
			fmt.Printf("An error occurred: %v\n", err)
		}
	}
	return nil
}

// writeSenderHoldings lists what the sender currently holds so the
// operator sees exactly what the confirmation covers.
func writeSenderHoldings(w io.Writer, assets []snipeit.HardwareAsset, accessories []snipeit.Accessory) {
	fmt.Fprintln(w, "Assets:")
	if len(assets) == 0 {
		fmt.Fprintln(w, "No assets found for this user")
	}
	for _, a := range assets {
		fmt.Fprintf(w, "  %s  %s (%s)\n", a.AssetTag, html.UnescapeString(a.Name), html.UnescapeString(a.Model.Name))
	}
	fmt.Fprintln(w, "Accessories:")
	if len(accessories) == 0 {
		fmt.Fprintln(w, "No accessories found for this user")
	}
	for _, acc := range accessories {
		fmt.Fprintf(w, "  %s (ID %d)\n", html.UnescapeString(acc.Name), acc.ID)
	}
}

func transferAccessory(ctx context.Context, client *snipeit.Client, acc snipeit.Accessory, senderID, receiverID int64) error {
	holders, err := client.AccessoryCheckedOut(ctx, acc.ID)
	if err != nil {
		return fmt.Errorf("looking up %s: %w", acc.Name, err)
	}

	var pivotID int64
	found := false
	for _, holder := range holders {
		if holder.ID == senderID {
			pivotID = holder.AssignedPivotID
			found = true
			break
		}
	}
	if !found {
		fmt.Println("No checked out entries found for this user")
		return nil
	}

	fmt.Printf("Assigned Pivot ID: %d\n", pivotID)
	if err := client.CheckinAccessory(ctx, pivotID); err != nil {
		return fmt.Errorf("checking in %s: %w", acc.Name, err)
	}
	if err := client.CheckoutAccessory(ctx, acc.ID, receiverID); err != nil {
		return fmt.Errorf("checking out %s after checkin succeeded: %w", acc.Name, err)
	}
	fmt.Printf("Moved %s\n", html.UnescapeString(acc.Name))
	return nil
}
