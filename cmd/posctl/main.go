// posctl tareas de operación del POS: migraciones, seed, anulación de ventas y consulta de stock.
//
// Uso: go run ./cmd/posctl --help
package main

import (
	"fmt"
	"os"

	"github.com/jhoicas/ventas-pos/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
