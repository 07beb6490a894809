package main

import "mlflow-algorithmia/internal/cli"

func main() {
	cli.Execute()
}
