package transfer

import (
	"github.com/code-payments/pnft-transfer/pkg/config"
	"github.com/code-payments/pnft-transfer/pkg/config/env"
	"github.com/code-payments/pnft-transfer/pkg/config/memory"
	"github.com/code-payments/pnft-transfer/pkg/config/wrapper"
)

const (
	envConfigPrefix = "PNFT_TRANSFER_"

	CommitmentConfigEnvName = envConfigPrefix + "COMMITMENT"
	defaultCommitment       = "confirmed"

	VerifyPayerConfigEnvName = envConfigPrefix + "VERIFY_PAYER"
	defaultVerifyPayer       = true

	DeriveTokenRecordsConfigEnvName = envConfigPrefix + "DERIVE_TOKEN_RECORDS"
	defaultDeriveTokenRecords       = true
)

type conf struct {
	commitment         config.String
	verifyPayer        config.Bool
	deriveTokenRecords config.Bool
}

// ConfigProvider defines how config values are pulled
type ConfigProvider func() *conf

// WithEnvConfigs returns configuration pulled from environment variables
func WithEnvConfigs() ConfigProvider {
	return func() *conf {
		return &conf{
			commitment:         env.NewStringConfig(CommitmentConfigEnvName, defaultCommitment),
			verifyPayer:        env.NewBoolConfig(VerifyPayerConfigEnvName, defaultVerifyPayer),
			deriveTokenRecords: env.NewBoolConfig(DeriveTokenRecordsConfigEnvName, defaultDeriveTokenRecords),
		}
	}
}

type testOverrides struct {
	commitment          string
	disablePayerCheck   bool
	disableRecordDerive bool
}

func withManualTestOverrides(overrides *testOverrides) ConfigProvider {
	return func() *conf {
		commitment := defaultCommitment
		if len(overrides.commitment) > 0 {
			commitment = overrides.commitment
		}

		return &conf{
			commitment:         wrapper.NewStringConfig(memory.NewConfig(commitment), defaultCommitment),
			verifyPayer:        wrapper.NewBoolConfig(memory.NewConfig(!overrides.disablePayerCheck), defaultVerifyPayer),
			deriveTokenRecords: wrapper.NewBoolConfig(memory.NewConfig(!overrides.disableRecordDerive), defaultDeriveTokenRecords),
		}
	}
}
