// Command rtpsim estimates scoring and payout rates for each roll bias the
// rules can select.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"text/tabwriter"

	"github.com/xtding233/farkle-backend/internal/dice"
	"github.com/xtding233/farkle-backend/internal/farkle"
	"github.com/xtding233/farkle-backend/internal/rules"
)

func main() {
	var (
		rulesDir = flag.String("rules", "config", "directory holding rules/*.yaml")
		modeName = flag.String("mode", "NORMAL", "game mode whose rules to load")
		trials   = flag.Int("trials", 100000, "trials per bias")
		seed     = flag.Uint64("seed", 0, "seed for a reproducible run (0 uses crypto randomness)")
		goal     = flag.String("goal", string(dice.GoalTurnScore), "roll_score or turn_score")
		numDice  = flag.Int("dice", 6, "dice per roll for roll_score")
		bankAt   = flag.Int("bank", 300, "turn_score: bank once this many points are reached")
		minDice  = flag.Int("min-dice", 3, "turn_score: bank when fewer dice remain")
	)
	flag.Parse()
	log.SetPrefix("[RTPSIM] ")
	log.SetFlags(0)

	mode, err := farkle.ParseMode(*modeName)
	if err != nil {
		log.Fatalf("mode: %v", err)
	}
	set, err := rules.FileResolver{Loader: rules.NewLoader(*rulesDir)}.Resolve(mode)
	if err != nil {
		log.Fatalf("load rules: %v", err)
	}
	tg := dice.TrialGoal(*goal)
	if tg != dice.GoalRollScore && tg != dice.GoalTurnScore {
		log.Fatalf("unknown goal %q", *goal)
	}

	b := set.Rules.Bias
	biases := []struct {
		name string
		v    float64
	}{
		{"newcomer", b.Newcomer},
		{"neutral", b.Neutral},
		{"min", b.Min},
		{"max", b.Max},
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "bias\tvalue\tmean\tp50\tp90\tfarkle\trtp\n")
	for i, bias := range biases {
		rng := dice.DefaultRNG()
		if *seed != 0 {
			rng = dice.NewSeededRNG(*seed + uint64(i))
		}
		st, err := dice.RunMonteCarlo(dice.SimParams{
			Bias:    bias.v,
			Dice:    *numDice,
			BankAt:  *bankAt,
			MinDice: *minDice,
		}, tg, *trials, rng)
		if err != nil {
			log.Fatalf("simulate %s: %v", bias.name, err)
		}
		// credits returned per credit wagered
		rtp := st.Mean / float64(set.Rules.PayoutDivisor)
		fmt.Fprintf(w, "%s\t%.2f\t%.1f\t%.0f\t%.0f\t%.2f%%\t%.3f\n",
			bias.name, bias.v, st.Mean, st.P50, st.P90, st.FarkleRate*100, rtp)
	}
	if err := w.Flush(); err != nil {
		log.Fatalf("write: %v", err)
	}
}
