package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/yourorg/treezk/circuits"
	"github.com/yourorg/treezk/pkg/plonkish"
	"github.com/yourorg/treezk/pkg/recurse"
)

// publicSummary mirrors the prover's JSON companion file.
type publicSummary struct {
	Present     bool   `json:"present"`
	SummaryHash string `json:"summaryHash"`
	RootIsLeaf  bool   `json:"rootIsLeaf"`
}

func main() {
	var proofPath, publicPath string

	cmd := &cobra.Command{
		Use:   "verifier",
		Short: "Verify a summary-tree root proof",
		RunE: func(cmd *cobra.Command, args []string) error {
			pBytes, err := os.ReadFile(proofPath)
			if err != nil {
				return err
			}
			jBytes, err := os.ReadFile(publicPath)
			if err != nil {
				return err
			}

			var proof plonkish.Proof
			if err := proof.UnmarshalBinary(pBytes); err != nil {
				return err
			}
			var pub publicSummary
			if err := json.Unmarshal(jBytes, &pub); err != nil {
				return err
			}

			// The family is rebuilt deterministically; identities match the
			// prover's as long as both run the same circuit definitions.
			leaf, err := circuits.BuildAccumulatorLeaf(1)
			if err != nil {
				return err
			}
			branch, err := circuits.BuildAccumulatorBranch(leaf, false)
			if err != nil {
				return err
			}

			root := recurse.Node{Proof: &proof, IsLeaf: pub.RootIsLeaf}
			if err := branch.VerifyRoot(root); err != nil {
				return fmt.Errorf("verification failed: %w", err)
			}

			_, sum := branch.RootSummary(&proof)
			if pub.SummaryHash != "" && pub.SummaryHash != sum.String() {
				return fmt.Errorf("summary hash mismatch: proof %s, public file %s", sum.String(), pub.SummaryHash)
			}
			fmt.Println("proof verified ✅")
			return nil
		},
	}

	cmd.Flags().StringVar(&proofPath, "proof", "", "tree_proof.bin")
	cmd.Flags().StringVar(&publicPath, "public", "", "tree_public.json")
	_ = cmd.MarkFlagRequired("proof")
	_ = cmd.MarkFlagRequired("public")

	if err := cmd.ExecuteContext(context.Background()); err != nil {
		log.Fatal(err)
	}
}
