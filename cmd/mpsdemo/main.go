// Command mpsdemo builds a small circuit on mps.State and prints the
// resulting statistics, exercising the package the way cmd/run exercises
// qising: flag-configured, errors wrapped and fatal-logged with a stack
// trace.
package main

import (
	"flag"
	"fmt"
	"log"
	"math/rand"

	"github.com/fumin/qmps/mps"
	"github.com/fumin/qmps/snapshot"
	"github.com/pkg/errors"
)

var (
	numQubits  = flag.Int("n", 3, "number of qubits")
	shots      = flag.Int("shots", 1000, "number of sample_measure shots")
	seed       = flag.Int64("seed", 1, "RNG seed")
	snapshotDB = flag.String("snapshot", "", "optional path to a snapshot sqlite database")
)

func main() {
	flag.Parse()
	log.SetFlags(log.Lmicroseconds | log.Llongfile | log.LstdFlags)

	if err := run(); err != nil {
		log.Fatalf("%+v", err)
	}
}

func run() error {
	rng := rand.New(rand.NewSource(*seed))
	cfg := mps.NewConfig()

	s, err := mps.NewState(*numQubits, cfg, rng)
	if err != nil {
		return errors.Wrap(err, "")
	}

	if err := ghz(s); err != nil {
		return errors.Wrap(err, "")
	}

	qubits := make([]int, s.NumQubits())
	for i := range qubits {
		qubits[i] = i
	}
	probs, err := s.Probabilities(qubits)
	if err != nil {
		return errors.Wrap(err, "")
	}
	log.Printf("probabilities: %v", probs)

	pauli := make([]byte, s.NumQubits())
	for i := range pauli {
		pauli[i] = 'Z'
	}
	zz, err := s.ExpvalPauli(qubits, string(pauli))
	if err != nil {
		return errors.Wrap(err, "")
	}
	log.Printf("<Z...Z> = %v", zz)

	samples, err := s.SampleMeasure(qubits, *shots)
	if err != nil {
		return errors.Wrap(err, "")
	}
	counts := make(map[string]int)
	for _, outcome := range samples {
		counts[fmt.Sprint(outcome)]++
	}
	log.Printf("sample_measure counts over %d shots: %v", *shots, counts)

	if *snapshotDB != "" {
		if err := writeSnapshot(s, qubits, probs); err != nil {
			return errors.Wrap(err, "")
		}
	}
	return nil
}

// ghz prepares the N-qubit Greenberger-Horne-Zeilinger state H(0); CX(0,1);
// CX(1,2); ...; CX(N-2,N-1).
func ghz(s *mps.State) error {
	if err := s.ApplyGate("h", []int{0}, nil); err != nil {
		return errors.Wrap(err, "")
	}
	for i := 0; i < s.NumQubits()-1; i++ {
		if err := s.ApplyGate("cx", []int{i, i + 1}, nil); err != nil {
			return errors.Wrap(err, "")
		}
	}
	return nil
}

func writeSnapshot(s *mps.State, qubits []int, probs []float64) error {
	store, err := snapshot.Open(*snapshotDB)
	if err != nil {
		return errors.Wrap(err, "")
	}
	defer store.Close()

	if err := store.RecordProbabilities("ghz", 0, probs); err != nil {
		return errors.Wrap(err, "")
	}
	if err := store.RecordVector("ghz", 0, s.FullStateVector()); err != nil {
		return errors.Wrap(err, "")
	}
	log.Printf("wrote snapshot to %s", *snapshotDB)
	return nil
}
