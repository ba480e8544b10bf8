package tokenmetadata

import (
	"crypto/ed25519"

	"github.com/pkg/errors"
)

type ProgrammableConfigVersion uint8

const (
	ProgrammableConfigV1 ProgrammableConfigVersion = iota
)

// ProgrammableConfig binds an asset to an optional rule set. V1 is the only
// layout the program defines.
type ProgrammableConfig struct {
	Version ProgrammableConfigVersion
	RuleSet ed25519.PublicKey // nil when no rule set is bound
}

// HasRuleSet reports whether the config declares a rule set.
func (c *ProgrammableConfig) HasRuleSet() bool {
	return c != nil && len(c.RuleSet) > 0
}

func getProgrammableConfig(src []byte, dst *ProgrammableConfig, offset *int) error {
	var version uint8
	if err := getUint8(src, &version, offset); err != nil {
		return err
	}
	if ProgrammableConfigVersion(version) != ProgrammableConfigV1 {
		return errors.Wrapf(errMalformed, "unknown programmable config version %d", version)
	}
	dst.Version = ProgrammableConfigVersion(version)

	var hasRuleSet bool
	if err := getOption(src, &hasRuleSet, offset); err != nil {
		return err
	}
	if !hasRuleSet {
		dst.RuleSet = nil
		return nil
	}
	return getKey(src, &dst.RuleSet, offset)
}

func putProgrammableConfig(dst []byte, v *ProgrammableConfig) []byte {
	dst = putUint8(dst, uint8(v.Version))
	dst = putBool(dst, len(v.RuleSet) > 0)
	if len(v.RuleSet) > 0 {
		dst = putKey(dst, v.RuleSet)
	}
	return dst
}
