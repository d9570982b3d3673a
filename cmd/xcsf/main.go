// Command xcsf is the standalone CLI entry point: a config path and
// optional dataset paths, with fixed exit codes (0 success, 1
// configuration error, 2 I/O error, 3 runtime failure). The CLI itself
// is an out-of-core collaborator: it only wires the library surface
// together using flag, not a heavier CLI framework.
package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"os"
	"strconv"

	"github.com/nguyensu/xcsf/internal/config"
	"github.com/nguyensu/xcsf/internal/xcsferr"
	"github.com/nguyensu/xcsf/pkg/xcsf"
)

const (
	exitOK           = 0
	exitConfigError  = 1
	exitIOError      = 2
	exitRuntimeError = 3
)

func main() {
	os.Exit(run())
}

func run() int {
	configPath := flag.String("config", "", "path to an INI configuration file")
	trainPath := flag.String("train", "", "path to a training CSV (features..., targets...)")
	testPath := flag.String("test", "", "path to a held-out test CSV")
	savePath := flag.String("save", "", "path to write the trained population snapshot")
	telemetryAddr := flag.String("telemetry", "", "if set, serve a live population view at this address")
	flag.Parse()

	if *configPath == "" {
		fmt.Fprintln(os.Stderr, "xcsf: -config is required")
		return exitConfigError
	}

	p, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "xcsf:", err)
		return exitConfigError
	}

	engine, err := xcsf.New(p)
	if err != nil {
		fmt.Fprintln(os.Stderr, "xcsf:", err)
		return exitConfigError
	}

	if *telemetryAddr != "" {
		go func() {
			if err := engine.Serve(*telemetryAddr); err != nil {
				fmt.Fprintln(os.Stderr, "xcsf: telemetry:", err)
			}
		}()
	}

	if *trainPath != "" {
		trainX, trainY, err := loadCSV(*trainPath, p.XDim, p.YDim)
		if err != nil {
			fmt.Fprintln(os.Stderr, "xcsf:", err)
			return exitCodeFor(err)
		}
		loss, err := engine.Fit(trainX, trainY, true)
		if err != nil {
			fmt.Fprintln(os.Stderr, "xcsf:", err)
			return exitCodeFor(err)
		}
		fmt.Printf("mean train loss: %f\n", loss)
	}

	if *testPath != "" {
		testX, testY, err := loadCSV(*testPath, p.XDim, p.YDim)
		if err != nil {
			fmt.Fprintln(os.Stderr, "xcsf:", err)
			return exitCodeFor(err)
		}
		score, err := engine.Score(testX, testY)
		if err != nil {
			fmt.Fprintln(os.Stderr, "xcsf:", err)
			return exitCodeFor(err)
		}
		fmt.Printf("test loss: %f\n", score)
	}

	if *savePath != "" {
		if err := engine.Save(*savePath); err != nil {
			fmt.Fprintln(os.Stderr, "xcsf:", err)
			return exitIOError
		}
	}

	fmt.Print(engine.Print(false))
	return exitOK
}

func exitCodeFor(err error) int {
	if xcsferr.Is(err, xcsferr.Configuration) {
		return exitConfigError
	}
	if xcsferr.Is(err, xcsferr.Persistence) {
		return exitIOError
	}
	return exitRuntimeError
}

// loadCSV reads a headerless CSV of xdim feature columns followed by
// ydim target columns.
func loadCSV(path string, xdim, ydim int) (x, y [][]float64, err error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, xcsferr.New(xcsferr.Persistence, "open "+path, err)
	}
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, nil, xcsferr.New(xcsferr.Persistence, "parse "+path, err)
	}

	x = make([][]float64, len(rows))
	y = make([][]float64, len(rows))
	for i, row := range rows {
		if len(row) != xdim+ydim {
			return nil, nil, fmt.Errorf("%s row %d: want %d columns, got %d", path, i, xdim+ydim, len(row))
		}
		xi := make([]float64, xdim)
		for j := 0; j < xdim; j++ {
			v, err := strconv.ParseFloat(row[j], 64)
			if err != nil {
				return nil, nil, fmt.Errorf("%s row %d col %d: %w", path, i, j, err)
			}
			xi[j] = v
		}
		yi := make([]float64, ydim)
		for j := 0; j < ydim; j++ {
			v, err := strconv.ParseFloat(row[xdim+j], 64)
			if err != nil {
				return nil, nil, fmt.Errorf("%s row %d col %d: %w", path, i, xdim+j, err)
			}
			yi[j] = v
		}
		x[i], y[i] = xi, yi
	}
	return x, y, nil
}
