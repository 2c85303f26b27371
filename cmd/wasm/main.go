//go:build js && wasm

package main

import (
	"encoding/json"
	"fmt"
	"syscall/js"

	"github.com/smallyu/go-theta-isogeny/internal/vector"
	"github.com/smallyu/go-theta-isogeny/pkg/isogeny"
)

func main() {
	c := make(chan struct{})

	fmt.Println("Go theta-isogeny WASM Initialized")

	js.Global().Set("GoThetaChain", map[string]interface{}{
		"ComputeChain": js.FuncOf(ComputeChain),
		"Strategy":     js.FuncOf(Strategy),
	})

	<-c
}

// ComputeChain evaluates one chain.
// Arguments:
// 0: JSON string of a vector (expected section ignored)
// 1: optional "optimal" to replace the strategy with the optimal one
// Returns:
// JSON string {a1, a2, images} or "error: ..."
func ComputeChain(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 || len(args) > 2 {
		return "error: expected 1 or 2 arguments (jsonVector, strategy)"
	}

	v, err := vector.Parse([]byte(args[0].String()), "json")
	if err != nil {
		return fmt.Sprintf("error: invalid json: %v", err)
	}
	v.Expected = vector.Expected{}
	c, err := v.Case()
	if err != nil {
		return fmt.Sprintf("error: invalid vector: %v", err)
	}

	in := c.Input
	var opts []isogeny.Option
	if len(args) == 2 && args[1].String() == "optimal" {
		plan, err := isogeny.OptimalStrategy(in.N)
		if err != nil {
			return fmt.Sprintf("error: strategy: %v", err)
		}
		in.Strategy = plan.Doubles
		opts = append(opts, isogeny.WithInverseFreeSteps(plan.InverseFree))
	}

	res, err := isogeny.ComputeChain(in.Product, in.K1, in.K2, in.Aux, in.N, in.Strategy, in.Flags, opts...)
	if err != nil {
		return fmt.Sprintf("error: %v", err)
	}
	out, err := vector.FromResult(res)
	if err != nil {
		return fmt.Sprintf("error: encode result: %v", err)
	}
	b, err := json.Marshal(out)
	if err != nil {
		return fmt.Sprintf("error: marshal result failed: %v", err)
	}
	return string(b)
}

// Strategy returns the optimal strategy for a chain length.
// Arguments:
// 0: chain length (number)
// Returns:
// JSON string {doubles, inverseFree, cost} or "error: ..."
func Strategy(this js.Value, args []js.Value) interface{} {
	if len(args) != 1 {
		return "error: expected 1 argument (n)"
	}
	plan, err := isogeny.OptimalStrategy(args[0].Int())
	if err != nil {
		return fmt.Sprintf("error: %v", err)
	}
	b, err := json.Marshal(map[string]interface{}{
		"doubles":     plan.Doubles,
		"inverseFree": plan.InverseFree,
		"cost":        plan.Cost,
	})
	if err != nil {
		return fmt.Sprintf("error: marshal result failed: %v", err)
	}
	return string(b)
}
