package main

import (
	"fmt"
	"math"
	"os"
	"path/filepath"

	"github.com/gocarina/gocsv"
	"gonum.org/v1/gonum/stat"
)

// energyRecord is one telemetry row, written per sampled tick.
type energyRecord struct {
	Tick   uint64  `csv:"tick"`
	Energy float64 `csv:"energy"` // sum of squared cell values
	Peak   float64 `csv:"peak"`   // largest absolute amplitude
	Mean   float64 `csv:"mean"`   // mean amplitude
}

// energyLog accumulates per-tick field statistics for stability monitoring.
// A stable, undamped run keeps Energy bounded; a damped run decays.
type energyLog struct {
	records []energyRecord
}

// fieldEnergy returns the total field energy, the sum of squared amplitudes.
func fieldEnergy(values []float32) float64 {
	var sum float64
	for _, v := range values {
		f := float64(v)
		sum += f * f
	}
	return sum
}

// fieldStats returns the peak absolute amplitude and the mean amplitude.
func fieldStats(values []float32) (peak, mean float64) {
	if len(values) == 0 {
		return 0, 0
	}
	var sum float64
	for _, v := range values {
		f := float64(v)
		sum += f
		if a := math.Abs(f); a > peak {
			peak = a
		}
	}
	return peak, sum / float64(len(values))
}

// record appends one telemetry row for the field at timestep t.
func (l *energyLog) record(t uint64, values []float32) {
	peak, mean := fieldStats(values)
	l.records = append(l.records, energyRecord{
		Tick:   t,
		Energy: fieldEnergy(values),
		Peak:   peak,
		Mean:   mean,
	})
}

// summary reports the mean and standard deviation of the recorded energies.
func (l *energyLog) summary() (mean, stddev float64) {
	if len(l.records) == 0 {
		return 0, 0
	}
	energies := make([]float64, len(l.records))
	for i, r := range l.records {
		energies[i] = r.Energy
	}
	return stat.Mean(energies, nil), stat.StdDev(energies, nil)
}

// writeCSV saves the accumulated rows under dir as telemetry.csv.
func (l *energyLog) writeCSV(dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating telemetry directory: %w", err)
	}
	path := filepath.Join(dir, "telemetry.csv")
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer f.Close()
	if err := gocsv.MarshalFile(&l.records, f); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
