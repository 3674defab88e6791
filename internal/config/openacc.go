package config

import (
	"strconv"

	"claw/internal/errors"
)

// Accelerator parameter keys.
const (
	ParamAccExecutionMode = "acc_execution_mode"
	ParamAccNumGangs      = "acc_num_gangs"
	ParamAccNumWorkers    = "acc_num_workers"
	ParamAccVectorLength  = "acc_vector_length"
)

// AccConfiguration groups the accelerator-family parameters.
type AccConfiguration struct {
	ExecutionMode string
	NumGangs      int
	NumWorkers    int
	VectorLength  int
}

func newAccConfiguration(params map[string]string) (*AccConfiguration, error) {
	acc := &AccConfiguration{
		ExecutionMode: params[ParamAccExecutionMode],
	}
	var err error
	if acc.NumGangs, err = accInt(params, ParamAccNumGangs); err != nil {
		return nil, err
	}
	if acc.NumWorkers, err = accInt(params, ParamAccNumWorkers); err != nil {
		return nil, err
	}
	if acc.VectorLength, err = accInt(params, ParamAccVectorLength); err != nil {
		return nil, err
	}
	return acc, nil
}

func accInt(params map[string]string, key string) (int, error) {
	value, ok := params[key]
	if !ok || value == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, errors.NewConfigurationf(
			"parameter %s must be an integer, got %q", key, value)
	}
	return n, nil
}
