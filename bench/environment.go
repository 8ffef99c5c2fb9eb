package bench

import (
	"runtime"

	"github.com/klauspost/cpuid/v2"

	"github.com/weiihann/hashbench/report"
)

// simdFeatures are the instruction sets BLAKE3 implementations dispatch on.
var simdFeatures = []cpuid.FeatureID{
	cpuid.SSE4,
	cpuid.AVX2,
	cpuid.AVX512F,
	cpuid.AVX512VL,
	cpuid.ASIMD,
}

// DetectEnvironment describes the current machine.
func DetectEnvironment() report.Environment {
	env := report.Environment{
		GoVersion: runtime.Version(),
		OS:        runtime.GOOS,
		Arch:      runtime.GOARCH,
		CPU:       cpuid.CPU.BrandName,
		Cores:     cpuid.CPU.LogicalCores,
	}

	if env.CPU == "" {
		env.CPU = "unknown CPU"
	}

	if env.Cores == 0 {
		env.Cores = runtime.NumCPU()
	}

	for _, f := range simdFeatures {
		if cpuid.CPU.Supports(f) {
			env.Features = append(env.Features, f.String())
		}
	}

	return env
}
