package main

import (
	"flag"
	"hash/maphash"
	"math/rand/v2"

	"github.com/sirupsen/logrus"

	"github.com/sweepkit/sweepkit/internal/agent"
	"github.com/sweepkit/sweepkit/internal/board"
	"github.com/sweepkit/sweepkit/internal/knowledge"
)

var (
	log = logrus.New()

	height    int
	width     int
	mineCount int
	games     int
	seed      uint64
	verbose   bool
	showBoard bool
)

func init() {
	flag.IntVar(&height, "height", 8, "board height")
	flag.IntVar(&width, "width", 8, "board width")
	flag.IntVar(&mineCount, "mines", 8, "number of mines")
	flag.IntVar(&games, "games", 1, "number of games to play")
	flag.Uint64Var(&seed, "seed", 0, "rng seed (0 picks a random one)")
	flag.BoolVar(&verbose, "v", false, "log every move")
	flag.BoolVar(&showBoard, "board", false, "print each board before solving")
}

func main() {
	flag.Parse()

	log.SetFormatter(&logrus.TextFormatter{ForceColors: true})
	if verbose {
		log.SetLevel(logrus.DebugLevel)
		agent.Log = log
		knowledge.Log = log
		board.Log = log
	}

	if seed == 0 {
		seed = new(maphash.Hash).Sum64()
	}
	rnd := rand.New(rand.NewPCG(seed, seed))
	log.WithFields(logrus.Fields{
		"board": logrus.Fields{"height": height, "width": width, "mines": mineCount},
		"games": games,
		"seed":  seed,
	}).Info("starting")

	var won, lost, moves int
	for i := range games {
		b, err := board.New(height, width, mineCount, rnd)
		if err != nil {
			log.Fatal("unable to generate board: ", err)
		}
		if showBoard {
			log.Infof("game %d board:\n%s", i+1, b.Render())
		}
		a, err := agent.New(b, rnd)
		if err != nil {
			log.Fatal(err)
		}
		status, err := a.Run(nil)
		if err != nil {
			log.Fatal("solver failed: ", err)
		}
		moves += len(a.Moves())
		switch status {
		case agent.StatusWon:
			won++
		default:
			lost++
		}
		log.WithFields(logrus.Fields{
			"game":   i + 1,
			"status": status,
			"moves":  len(a.Moves()),
		}).Info("game over")
	}

	log.WithFields(logrus.Fields{
		"won":       won,
		"lost":      lost,
		"avg_moves": float64(moves) / float64(games),
	}).Info("done")
}
