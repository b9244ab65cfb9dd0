package hclscenario

import (
	"errors"
	"fmt"

	"github.com/Azure/golden"
	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/peterh/liner"
	"github.com/zclconf/go-cty/cty"
)

// EnterDebugMode starts a REPL that evaluates HCL expressions against the
// configuration's evaluation context, for inspecting variables and locals
// before committing to a run.
func EnterDebugMode(config SalvoConfig) {
	line := liner.NewLiner()
	defer func() {
		_ = line.Close()
	}()

	line.SetCtrlCAborts(true)
	fmt.Println("Evaluating expressions against the loaded scenario configuration.")
	fmt.Println("Type `quit`, `exit` or press Ctrl+C to leave.")

	for {
		input, err := line.Prompt("salvo> ")
		if errors.Is(err, liner.ErrPromptAborted) {
			fmt.Println("Aborted")
			return
		}

		if err != nil {
			fmt.Println("Error reading line: ", err)
			return
		}

		switch input {
		case "":
			continue
		case "quit", "exit":
			return
		}

		line.AppendHistory(input)

		expression, diag := hclsyntax.ParseExpression([]byte(input), "repl.hcl", hcl.InitialPos)
		if diag.HasErrors() {
			fmt.Printf("%s\n", diag.Error())
			continue
		}

		value, diag := expression.Value(config.EvalContext())
		if diag.HasErrors() {
			fmt.Printf("%s\n", diag.Error())
			continue
		}

		// Scalars print bare; anything structured gets a type hint.
		if typ := value.Type(); typ != cty.String && typ != cty.Number && typ != cty.Bool {
			fmt.Printf("(%s) ", typ.FriendlyName())
		}

		fmt.Println(golden.CtyValueToString(value))
	}
}
