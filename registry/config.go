package registry

import (
	"fmt"

	model "github.com/anchorage/registry-go/model/registry"
)

// Config holds the tunables of the registry ledger. The host runtime's
// genesis supplies these; DefaultConfig matches the reference genesis.
type Config struct {
	// MinMetadataLength and MaxMetadataLength bound the metadata accepted
	// by Mint, inclusive on both ends.
	MinMetadataLength int
	MaxMetadataLength int

	// MintBaseFee and MintPerByteFee determine the currency deposit
	// reserved from the token owner at FinishMint:
	// base + len(metadata)*perByte.
	MintBaseFee    model.Balance
	MintPerByteFee model.Balance

	// RegistryDeposit is reserved from the creator of a new registry.
	RegistryDeposit model.Balance
}

// DefaultConfig returns the reference configuration.
func DefaultConfig() Config {
	return Config{
		MinMetadataLength: 10,
		MaxMetadataLength: 100,
		MintBaseFee:       10,
		MintPerByteFee:    1,
		RegistryDeposit:   100,
	}
}

// Validate checks internal consistency of the configuration.
func (c Config) Validate() error {
	if c.MinMetadataLength < 0 {
		return fmt.Errorf("negative minimum metadata length: %d", c.MinMetadataLength)
	}
	if c.MaxMetadataLength < c.MinMetadataLength {
		return fmt.Errorf("metadata bounds inverted: min %d > max %d",
			c.MinMetadataLength, c.MaxMetadataLength)
	}
	return nil
}
