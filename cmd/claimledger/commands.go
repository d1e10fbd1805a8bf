package main

import (
	"encoding/hex"
	"errors"
	"fmt"
	"io"

	"github.com/Takashi-Doyle/merkledrop-rns-contract/claimproof"
	"github.com/Takashi-Doyle/merkledrop-rns-contract/config"
	"github.com/Takashi-Doyle/merkledrop-rns-contract/ledger"
	"github.com/Takashi-Doyle/merkledrop-rns-contract/ledgerstore"
	"github.com/Takashi-Doyle/merkledrop-rns-contract/residue"
	"github.com/spf13/cobra"
)

// run executes one command line. The app opened for the command is closed
// whether or not the command succeeds.
func run(args []string, out io.Writer) error {
	var a *app
	root := newRootCmd(out, &a)
	root.SetArgs(args)
	err := root.Execute()
	if a != nil {
		err = errors.Join(err, a.Close())
	}
	return err
}

func newRootCmd(out io.Writer, a **app) *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:               "claimledger",
		Short:             "Operate claim distribution ledgers",
		SilenceUsage:      true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Annotations["noapp"] != "" {
				return nil
			}
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			*a, err = openApp(cfg)
			return err
		},
	}
	root.SetOut(out)
	root.PersistentFlags().StringVar(&configPath, "config", "claimledger.yaml", "path to the YAML configuration")

	env := func() *app { return *a }
	root.AddCommand(
		newInitConfigCmd(),
		newCreateCmd(env),
		newClaimCmd(env),
		newCloseCmd(env),
		newUpdateWindowCmd(env),
		newUpdateCommitmentCmd(env),
		newTeardownCmd(env),
		newShowCmd(env),
	)
	return root
}

func newInitConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:         "init-config PATH",
		Short:       "Write the default configuration to PATH",
		Args:        cobra.ExactArgs(1),
		Annotations: map[string]string{"noapp": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			return config.WriteDefault(args[0])
		},
	}
}

func newCreateCmd(env func() *app) *cobra.Command {
	var authority, snapshot, commitment string
	var start, duration int64
	var total uint64
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a ledger and print its id",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p := ledger.Params{WindowStart: start, WindowDuration: duration, TotalClaims: total}
			var err error
			if p.Authority, err = ledger.ParseIdentity(authority); err != nil {
				return fmt.Errorf("--authority: %w", err)
			}
			if p.Snapshot, err = claimproof.ParseDigest(snapshot); err != nil {
				return fmt.Errorf("--snapshot: %w", err)
			}
			if p.Commitment, err = claimproof.ParseDigest(commitment); err != nil {
				return fmt.Errorf("--commitment: %w", err)
			}
			a := env()
			id, err := a.svc.Create(cmd.Context(), p)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), id)
			return printSeal(cmd, a, id)
		},
	}
	f := cmd.Flags()
	f.StringVar(&authority, "authority", "", "authority identity, 32 bytes hex")
	f.StringVar(&snapshot, "snapshot", "", "allocation snapshot hash, 32 bytes hex")
	f.StringVar(&commitment, "commitment", "", "allocation merkle root, 32 bytes hex")
	f.Int64Var(&start, "start", 0, "claim window start, unix seconds")
	f.Int64Var(&duration, "duration", 0, "claim window duration, seconds")
	f.Uint64Var(&total, "total", 0, "number of allocation slots")
	for _, name := range []string{"authority", "snapshot", "commitment", "duration", "total"} {
		_ = cmd.MarkFlagRequired(name)
	}
	return cmd
}

func newClaimCmd(env func() *app) *cobra.Command {
	var slot, amount uint64
	var recipient, caller string
	var proof []string
	cmd := &cobra.Command{
		Use:   "claim LEDGER_ID",
		Short: "Claim the allocation of one slot",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, who, err := parseTarget(args[0], caller)
			if err != nil {
				return err
			}
			req := ledger.ClaimRequest{Slot: slot, Amount: amount}
			if req.Recipient, err = ledger.ParseIdentity(recipient); err != nil {
				return fmt.Errorf("--recipient: %w", err)
			}
			if req.Proof, err = claimproof.ParseProof(proof); err != nil {
				return fmt.Errorf("--proof: %w", err)
			}
			a := env()
			ev, err := a.svc.Claim(cmd.Context(), id, who, req)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "claimed slot %d: %d to %s\n", ev.Slot, ev.Amount, ev.Recipient)
			return printSeal(cmd, a, id)
		},
	}
	f := cmd.Flags()
	f.Uint64Var(&slot, "slot", 0, "allocation slot index")
	f.Uint64Var(&amount, "amount", 0, "allocated amount")
	f.StringVar(&recipient, "recipient", "", "recipient identity, 32 bytes hex")
	f.StringSliceVar(&proof, "proof", nil, "sibling digests leaf to root, comma separated hex")
	_ = cmd.MarkFlagRequired("recipient")
	addCallerFlag(cmd, &caller)
	return cmd
}

func newCloseCmd(env func() *app) *cobra.Command {
	var caller string
	cmd := &cobra.Command{
		Use:   "close LEDGER_ID",
		Short: "Stop all claims until the window is next updated",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, who, err := parseTarget(args[0], caller)
			if err != nil {
				return err
			}
			a := env()
			if _, err = a.svc.Close(cmd.Context(), id, who); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "closed")
			return printSeal(cmd, a, id)
		},
	}
	addCallerFlag(cmd, &caller)
	return cmd
}

func newUpdateWindowCmd(env func() *app) *cobra.Command {
	var caller string
	var start, duration int64
	cmd := &cobra.Command{
		Use:   "update-window LEDGER_ID",
		Short: "Replace the claim window and re-open claims",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, who, err := parseTarget(args[0], caller)
			if err != nil {
				return err
			}
			a := env()
			ev, err := a.svc.UpdateWindow(cmd.Context(), id, who, start, duration)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "window [%d, %d]\n", ev.WindowStart, ev.WindowStart+ev.WindowDuration)
			return printSeal(cmd, a, id)
		},
	}
	addCallerFlag(cmd, &caller)
	cmd.Flags().Int64Var(&start, "start", 0, "claim window start, unix seconds")
	cmd.Flags().Int64Var(&duration, "duration", 0, "claim window duration, seconds")
	_ = cmd.MarkFlagRequired("duration")
	return cmd
}

func newUpdateCommitmentCmd(env func() *app) *cobra.Command {
	var caller, commitment string
	var total uint64
	cmd := &cobra.Command{
		Use:   "update-commitment LEDGER_ID",
		Short: "Replace the allocation root and slot count",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, who, err := parseTarget(args[0], caller)
			if err != nil {
				return err
			}
			root, err := claimproof.ParseDigest(commitment)
			if err != nil {
				return fmt.Errorf("--commitment: %w", err)
			}
			a := env()
			if _, err = a.svc.UpdateCommitment(cmd.Context(), id, who, root, total); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "commitment updated")
			return printSeal(cmd, a, id)
		},
	}
	addCallerFlag(cmd, &caller)
	cmd.Flags().StringVar(&commitment, "commitment", "", "allocation merkle root, 32 bytes hex")
	cmd.Flags().Uint64Var(&total, "total", 0, "number of allocation slots")
	_ = cmd.MarkFlagRequired("commitment")
	_ = cmd.MarkFlagRequired("total")
	return cmd
}

func newTeardownCmd(env func() *app) *cobra.Command {
	var caller, recipient string
	cmd := &cobra.Command{
		Use:   "teardown LEDGER_ID",
		Short: "Delete the ledger and release its storage to a recipient",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, who, err := parseTarget(args[0], caller)
			if err != nil {
				return err
			}
			to, err := ledger.ParseIdentity(recipient)
			if err != nil {
				return fmt.Errorf("--recipient: %w", err)
			}
			ev, err := env().svc.Teardown(cmd.Context(), id, who, to)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "released %d bytes to %s\n", ev.ReclaimedBytes, ev.Recipient)
			return nil
		},
	}
	addCallerFlag(cmd, &caller)
	cmd.Flags().StringVar(&recipient, "recipient", "", "identity credited with the released storage")
	_ = cmd.MarkFlagRequired("recipient")
	return cmd
}

func newShowCmd(env func() *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show LEDGER_ID",
		Short: "Print the ledger state",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := ledgerstore.ParseLedgerID(args[0])
			if err != nil {
				return err
			}
			l, err := env().svc.Get(cmd.Context(), id)
			if err != nil {
				return err
			}
			lanes := l.Lanes()
			occ := lanes.Occupancy()
			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "authority:    %s\n", l.Authority)
			fmt.Fprintf(w, "commitment:   %s\n", l.Commitment)
			fmt.Fprintf(w, "snapshot:     %s\n", l.Snapshot)
			fmt.Fprintf(w, "window:       [%d, %d]\n", l.WindowStart, l.WindowEnd())
			fmt.Fprintf(w, "closed:       %t\n", l.Closed)
			fmt.Fprintf(w, "total claims: %d\n", l.TotalClaims)
			for i, m := range residue.Moduli {
				fmt.Fprintf(w, "lane %d:       %d/%d\n", i, occ[i], m)
			}
			fmt.Fprintf(w, "fp rate:      %.6f\n", lanes.FalsePositiveRate())
			return nil
		},
	}
}

func addCallerFlag(cmd *cobra.Command, caller *string) {
	cmd.Flags().StringVar(caller, "caller", "", "calling identity, 32 bytes hex")
	_ = cmd.MarkFlagRequired("caller")
}

func parseTarget(idArg, caller string) (ledgerstore.LedgerID, ledger.Identity, error) {
	id, err := ledgerstore.ParseLedgerID(idArg)
	if err != nil {
		return id, ledger.Identity{}, err
	}
	who, err := ledger.ParseIdentity(caller)
	if err != nil {
		return id, who, fmt.Errorf("--caller: %w", err)
	}
	return id, who, nil
}

func printSeal(cmd *cobra.Command, a *app, id ledgerstore.LedgerID) error {
	if a.cfg.Seal.KeyFile == "" {
		return nil
	}
	msg, err := a.svc.LatestSeal(id)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "seal: %s\n", hex.EncodeToString(msg))
	return nil
}
