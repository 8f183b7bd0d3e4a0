package cmd

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/ardanlabs/ledger/foundation/blockchain/database"
	"github.com/ardanlabs/ledger/foundation/blockchain/miner"
	"github.com/pkg/errors"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

// progressEvery controls how often a trial reports attempts to the spinner.
const progressEvery = 1_000

// Trial is the outcome of mining one independent chain.
type Trial struct {
	Index    uint64        `json:"index"`
	Hash     string        `json:"hash"`
	Nonce    string        `json:"nonce"`
	Attempts uint64        `json:"attempts"`
	Duration time.Duration `json:"duration"`
}

// BenchResult summarizes a benchmark run.
type BenchResult struct {
	Difficulty      uint          `json:"difficulty"`
	Trials          []Trial       `json:"trials"`
	TotalAttempts   uint64        `json:"total_attempts"`
	AverageAttempts float64       `json:"average_attempts"`
	AverageDuration time.Duration `json:"average_duration"`
}

var benchCmd = &cobra.Command{
	Use:   "bench",
	Short: "Benchmark mining locally",
	Long: `bench mines the genesis block of independent in-memory chains at the
specified difficulty and reports the attempts and time each search took.
No node is required.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		difficulty, _ := cmd.Flags().GetUint("difficulty")
		trials, _ := cmd.Flags().GetInt("trials")
		maxAttempts, _ := cmd.Flags().GetUint64("max-attempts")
		quiet, _ := cmd.Flags().GetBool("quiet")

		var w io.Writer = cmd.ErrOrStderr()
		if quiet {
			w = io.Discard
		}

		bar := progressbar.NewOptions64(
			-1,
			progressbar.OptionSetWriter(w),
			progressbar.OptionSetDescription(fmt.Sprintf("Mining at difficulty %d...", difficulty)),
			progressbar.OptionSpinnerType(14),
			progressbar.OptionShowCount(),
			progressbar.OptionShowIts(),
			progressbar.OptionClearOnFinish(),
		)

		progress := func(n int) {
			bar.Add(n)
		}

		result, err := Bench(commandContext(cmd), difficulty, trials, maxAttempts, progress)
		if err != nil {
			return err
		}

		if err := bar.Finish(); err != nil {
			return errors.Wrap(err, "finishing progress bar")
		}

		return printJSON(cmd.OutOrStdout(), result)
	},
}

func init() {
	benchCmd.Flags().UintP("difficulty", "d", miner.DefaultDifficulty, "Number of leading zeros required.")
	benchCmd.Flags().IntP("trials", "n", 4, "Number of independent chains to mine concurrently.")
	benchCmd.Flags().Uint64("max-attempts", 0, "Give up a trial after this many attempts, 0 for no limit.")
	benchCmd.Flags().BoolP("quiet", "q", false, "Do not display the progress spinner.")

	RootCmd.AddCommand(benchCmd)
}

// =============================================================================

// Bench mines trials independent chains concurrently. The progress function
// may be nil; when set it is called periodically with the number of new
// attempts made.
func Bench(ctx context.Context, difficulty uint, trials int, maxAttempts uint64, progress func(n int)) (BenchResult, error) {
	if trials < 1 {
		return BenchResult{}, errors.Errorf("trials must be at least 1, got %d", trials)
	}

	results := make([]Trial, trials)

	g, ctx := errgroup.WithContext(ctx)
	for i := range trials {
		g.Go(func() error {
			m := miner.New(miner.Config{
				Chain:       database.New(database.Config{}),
				MaxAttempts: maxAttempts,
				Progress: func(attempts uint64) {
					if progress != nil && attempts%progressEvery == 0 {
						progress(progressEvery)
					}
				},
			})

			sol, err := m.Search(ctx, nil, difficulty)
			if err != nil {
				return errors.WithMessagef(err, "trial[%d]", i)
			}

			results[i] = Trial{
				Index:    sol.Block.Index,
				Hash:     sol.Block.Hash,
				Nonce:    sol.Block.Nonce,
				Attempts: sol.Attempts,
				Duration: sol.Duration,
			}

			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return BenchResult{}, err
	}

	result := BenchResult{
		Difficulty: difficulty,
		Trials:     results,
	}

	var total time.Duration
	for _, trial := range results {
		result.TotalAttempts += trial.Attempts
		total += trial.Duration
	}
	result.AverageAttempts = float64(result.TotalAttempts) / float64(trials)
	result.AverageDuration = total / time.Duration(trials)

	return result, nil
}
