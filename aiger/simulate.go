package aiger

import "fmt"

// Simulate evaluates m forward for len(inputSteps) cycles, given one boolean
// per latch (AIG order) as the initial state and one boolean per input (AIG
// order) per cycle, returning the value of target at every cycle. This is
// used to check witness replay: a reported counterexample must actually
// drive target (the bad literal) true at the reported cycle.
func Simulate(m *Model, initLatches []bool, inputSteps [][]bool, target Lit) ([]bool, error) {
	if len(initLatches) != len(m.Latches) {
		return nil, fmt.Errorf("aiger: simulate: got %d initial latch values, model has %d latches", len(initLatches), len(m.Latches))
	}
	latchVal := append([]bool(nil), initLatches...)
	nodeVal := make([]bool, m.MaxVar+1)

	results := make([]bool, len(inputSteps))
	for t, inputs := range inputSteps {
		if len(inputs) != len(m.Inputs) {
			return nil, fmt.Errorf("aiger: simulate: step %d has %d inputs, model has %d", t, len(inputs), len(m.Inputs))
		}
		nodeVal[0] = false
		for i, lit := range m.Inputs {
			nodeVal[lit.Var()] = inputs[i]
		}
		for i, latch := range m.Latches {
			nodeVal[latch.Lit.Var()] = latchVal[i]
		}
		eval := func(l Lit) bool { return nodeVal[l.Var()] != l.Sign() }
		for _, a := range m.Ands {
			nodeVal[a.LHS.Var()] = eval(a.RHS0) && eval(a.RHS1)
		}

		results[t] = eval(target)

		next := make([]bool, len(m.Latches))
		for i, latch := range m.Latches {
			next[i] = eval(latch.Next)
		}
		latchVal = next
	}
	return results, nil
}
