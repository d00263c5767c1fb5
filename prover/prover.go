// Package prover produces Groth16 attestations of the ledger's fee
// arithmetic. A proof lets an off-process auditor check that a published
// fee split or transfer followed the fixed integer rules without replaying
// the ledger.
package prover

import (
	"bytes"
	"fmt"
	"math/big"
	"sort"
	"sync"

	"github.com/consensys/gnark-crypto/ecc"
	"github.com/consensys/gnark/backend/groth16"
	"github.com/consensys/gnark/constraint"
	"github.com/consensys/gnark/frontend"
	"github.com/consensys/gnark/frontend/cs/r1cs"
)

// Prover compiles circuits once and generates proofs against them. Safe
// for concurrent use.
type Prover struct {
	mu       sync.RWMutex
	circuits map[string]*compiled
	curve    ecc.ID
}

type compiled struct {
	cs           constraint.ConstraintSystem
	provingKey   groth16.ProvingKey
	verifyingKey groth16.VerifyingKey
	constraints  int
}

// Proof is a serialized Groth16 proof with its public inputs as decimal
// strings, ordered as the circuit declares them.
type Proof struct {
	CircuitName  string   `json:"circuit_name"`
	Constraints  int      `json:"constraints"`
	PublicInputs []string `json:"public_inputs"`
	Data         []byte   `json:"data"`
}

// New creates a prover on BN254.
func New() *Prover {
	return &Prover{
		circuits: make(map[string]*compiled),
		curve:    ecc.BN254,
	}
}

// Register compiles a circuit and runs its setup. Registration is the
// expensive step; proofs against a registered circuit are cheap by
// comparison.
func (p *Prover) Register(name string, circuit frontend.Circuit) error {
	cs, err := frontend.Compile(p.curve.ScalarField(), r1cs.NewBuilder, circuit)
	if err != nil {
		return fmt.Errorf("compiling %s: %w", name, err)
	}
	pk, vk, err := groth16.Setup(cs)
	if err != nil {
		return fmt.Errorf("setup for %s: %w", name, err)
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.circuits[name] = &compiled{
		cs:           cs,
		provingKey:   pk,
		verifyingKey: vk,
		constraints:  cs.GetNbConstraints(),
	}
	return nil
}

// Circuits returns the registered circuit names, sorted.
func (p *Prover) Circuits() []string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	names := make([]string, 0, len(p.circuits))
	for name := range p.circuits {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (p *Prover) circuit(name string) (*compiled, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	cc, ok := p.circuits[name]
	if !ok {
		return nil, fmt.Errorf("circuit %q not registered", name)
	}
	return cc, nil
}

// Prove generates a proof that the assignment satisfies the named
// circuit. An assignment violating the circuit's constraints fails here,
// during witness solving.
func (p *Prover) Prove(name string, assignment frontend.Circuit) (*Proof, error) {
	cc, err := p.circuit(name)
	if err != nil {
		return nil, err
	}

	w, err := frontend.NewWitness(assignment, p.curve.ScalarField())
	if err != nil {
		return nil, fmt.Errorf("building witness: %w", err)
	}
	proof, err := groth16.Prove(cc.cs, cc.provingKey, w)
	if err != nil {
		return nil, fmt.Errorf("proving %s: %w", name, err)
	}

	public, err := w.Public()
	if err != nil {
		return nil, fmt.Errorf("extracting public witness: %w", err)
	}
	inputs, err := publicInputs(public)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if _, err := proof.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("serializing proof: %w", err)
	}
	return &Proof{
		CircuitName:  name,
		Constraints:  cc.constraints,
		PublicInputs: inputs,
		Data:         buf.Bytes(),
	}, nil
}

// Verify proves the assignment and verifies the result against the
// circuit's verifying key. It fails if the assignment violates any
// constraint.
func (p *Prover) Verify(name string, assignment frontend.Circuit) error {
	cc, err := p.circuit(name)
	if err != nil {
		return err
	}

	w, err := frontend.NewWitness(assignment, p.curve.ScalarField())
	if err != nil {
		return fmt.Errorf("building witness: %w", err)
	}
	proof, err := groth16.Prove(cc.cs, cc.provingKey, w)
	if err != nil {
		return fmt.Errorf("proving %s: %w", name, err)
	}
	public, err := w.Public()
	if err != nil {
		return fmt.Errorf("extracting public witness: %w", err)
	}
	return groth16.Verify(proof, cc.verifyingKey, public)
}

// publicInputs decodes a marshaled public witness into decimal strings.
// The binary layout is a 12 byte header followed by 32 byte field
// elements.
func publicInputs(public interface{ MarshalBinary() ([]byte, error) }) ([]string, error) {
	raw, err := public.MarshalBinary()
	if err != nil {
		return nil, fmt.Errorf("marshaling public witness: %w", err)
	}
	const headerSize = 12
	const elementSize = 32
	if len(raw) < headerSize {
		return nil, nil
	}
	data := raw[headerSize:]
	out := make([]string, 0, len(data)/elementSize)
	for start := 0; start+elementSize <= len(data); start += elementSize {
		out = append(out, new(big.Int).SetBytes(data[start:start+elementSize]).String())
	}
	return out, nil
}
