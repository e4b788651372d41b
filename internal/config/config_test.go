// Copyright 2026 The heifwriter Authors
// SPDX-License-Identifier: MIT

package config_test

import (
	"testing"

	qt "github.com/frankban/quicktest"

	"github.com/bep/heifwriter/internal/config"
)

func minimalConfig() config.Configuration {
	return config.Configuration{
		Content: []config.Content{
			{Master: config.Master{UniqBsid: 1, FilePath: "sample.265", HdlrType: "pict", CodeType: "hvc1", EncpType: "meta"}},
		},
	}
}

func TestValidateAcceptsMinimalConfig(t *testing.T) {
	c := qt.New(t)
	cfg := minimalConfig()
	c.Assert(cfg.Validate(), qt.IsNil)
}

func TestValidateRejectsEmptyContent(t *testing.T) {
	c := qt.New(t)
	cfg := config.Configuration{}
	c.Assert(cfg.Validate(), qt.Not(qt.IsNil))
}

func TestValidateRejectsDuplicateBsid(t *testing.T) {
	c := qt.New(t)
	cfg := minimalConfig()
	cfg.Content = append(cfg.Content, cfg.Content[0])
	c.Assert(cfg.Validate(), qt.Not(qt.IsNil))
}

func TestValidateRejectsBadIrotAngle(t *testing.T) {
	c := qt.New(t)
	cfg := minimalConfig()
	cfg.Content[0].Derived.Irots = []config.Irot{{Angle90: 7}}
	c.Assert(cfg.Validate(), qt.Not(qt.IsNil))
}

func TestValidateRejectsIovlOffsetCountMismatch(t *testing.T) {
	c := qt.New(t)
	cfg := minimalConfig()
	cfg.Content[0].Derived.Iovls = []config.Iovl{
		{RefSet: config.RefSet{RefsList: []uint32{1}, IdxsList: [][]uint32{{1, 2}}}},
	}
	c.Assert(cfg.Validate(), qt.Not(qt.IsNil))
}

func TestValidateRejectsEmptyEgroup(t *testing.T) {
	c := qt.New(t)
	cfg := minimalConfig()
	cfg.Egroups = []config.Egroup{{GroupType: "altr"}}
	c.Assert(cfg.Validate(), qt.Not(qt.IsNil))
}
