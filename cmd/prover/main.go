package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/yourorg/treezk/circuits"
	"github.com/yourorg/treezk/internal/hashutil"
	"github.com/yourorg/treezk/internal/logger"
	"github.com/yourorg/treezk/pkg/recurse"
	"github.com/yourorg/treezk/pkg/treeaddr"
)

// PublicSummary is the JSON companion of the binary root proof.
type PublicSummary struct {
	Present     bool     `json:"present"`
	SummaryHash string   `json:"summaryHash"`
	Address     *uint64  `json:"address,omitempty"`
	Meta        []string `json:"meta"`
	NumLeaves   int      `json:"numLeaves"`
	RootIsLeaf  bool     `json:"rootIsLeaf"`
}

func main() {
	var (
		payloadsS string
		batchID   uint64
		outDir    string
	)

	rootCmd := &cobra.Command{
		Use:   "prover",
		Short: "Accumulate payloads into a recursively proved summary tree",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if payloadsS == "" {
				_ = godotenv.Load()
				payloadsS = os.Getenv("TREEZK_PAYLOADS")
				if payloadsS == "" {
					return fmt.Errorf("--payloads flag or TREEZK_PAYLOADS env var is required")
				}
			}
			payloads := strings.Split(payloadsS, ",")
			start := time.Now()
			l := logger.Logger()

			// -----------------------------------------------------------------
			// Circuit build (once per process, reused for every proof)
			// -----------------------------------------------------------------
			leaf, err := circuits.BuildAccumulatorLeaf(1)
			if err != nil {
				return err
			}
			branch, err := circuits.BuildAccumulatorBranch(leaf, false)
			if err != nil {
				return err
			}
			branchID := branch.Circuit.Identity()
			l.Info().Int("gates", branch.Circuit.NumGates()).Msg("accumulator family built")

			var batch fr.Element
			batch.SetUint64(batchID)
			meta := []fr.Element{batch}

			// -----------------------------------------------------------------
			// Leaf proofs, padded to a power of two with placeholders
			// -----------------------------------------------------------------
			width := 1
			for width < len(payloads) {
				width <<= 1
			}
			nodes := make([]recurse.Node, width)
			for i := 0; i < width; i++ {
				item := circuits.Item{Addr: treeaddr.Absent()}
				if i < len(payloads) {
					item = circuits.Item{
						Payload: hashutil.KeccakToField([]byte(payloads[i])),
						Addr:    treeaddr.At(uint64(i)),
					}
				}
				p, err := leaf.Prove(branchID, meta, item)
				if err != nil {
					return fmt.Errorf("leaf %d: %w", i, err)
				}
				nodes[i] = recurse.Node{Proof: p, IsLeaf: true}
			}

			// -----------------------------------------------------------------
			// Fold to the root, siblings in parallel
			// -----------------------------------------------------------------
			root, err := recurse.ProveTree(cmd.Context(), nodes, branch.Combine)
			if err != nil {
				return err
			}
			if err := branch.VerifyRoot(root); err != nil {
				return err
			}

			// -----------------------------------------------------------------
			// Outputs
			// -----------------------------------------------------------------
			if err := os.MkdirAll(outDir, 0o755); err != nil {
				return err
			}
			proofBytes, err := root.Proof.MarshalBinary()
			if err != nil {
				return err
			}
			if err := os.WriteFile(filepath.Join(outDir, "tree_proof.bin"), proofBytes, 0o644); err != nil {
				return err
			}

			present, sum := branch.RootSummary(root.Proof)
			pub := PublicSummary{
				Present:     present,
				SummaryHash: sum.String(),
				Meta:        []string{batch.String()},
				NumLeaves:   len(payloads),
				RootIsLeaf:  root.IsLeaf,
			}
			rootAddr, err := branch.RootAddress(root.Proof)
			if err != nil {
				return err
			}
			if v, ok := rootAddr.Value(); ok {
				pub.Address = &v
			}
			jsonBytes, err := json.MarshalIndent(pub, "", "  ")
			if err != nil {
				return err
			}
			if err := os.WriteFile(filepath.Join(outDir, "tree_public.json"), jsonBytes, 0o644); err != nil {
				return err
			}

			l.Info().
				Str("summaryHash", sum.String()).
				Dur("took", time.Since(start)).
				Msg("root proof written")
			return nil
		},
	}

	rootCmd.Flags().StringVar(&payloadsS, "payloads", "", "Comma-separated leaf payloads")
	rootCmd.Flags().Uint64Var(&batchID, "batch", 0, "Batch identifier propagated to every leaf")
	rootCmd.Flags().StringVar(&outDir, "outdir", "./", "Output directory")

	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		log.Fatal(err)
	}
}
