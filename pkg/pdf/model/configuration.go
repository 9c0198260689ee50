/*
Copyright 2023 The aurochs Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package model

import (
	"io"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v2"
)

// EncryptionPolicy selects the handling of encrypted documents.
type EncryptionPolicy int

// The available encryption policies.
const (
	// EncryptReject aborts on an encrypted trailer.
	EncryptReject EncryptionPolicy = iota

	// EncryptIgnore reads best effort without decryption.
	// Used for already decrypted fixtures.
	EncryptIgnore

	// EncryptDecrypt decrypts using the configured passwords.
	EncryptDecrypt
)

// ValidationMode represents the degree of tolerance towards spec violations.
type ValidationMode int

// The available validation modes.
const (
	ValidationStrict ValidationMode = iota
	ValidationRelaxed
)

// Configuration of the document core.
type Configuration struct {
	// ValidationMode controls tolerance towards spec violations.
	ValidationMode ValidationMode

	// DecodeAllStreams forces decoding of all stream payloads during read.
	DecodeAllStreams bool

	// EncryptionPolicy controls handling of encrypted documents.
	EncryptionPolicy EncryptionPolicy

	// UserPW and OwnerPW are used with EncryptDecrypt only.
	UserPW  string
	OwnerPW string

	// MaxImageDimension caps image width and height during image decoding.
	MaxImageDimension int
}

// DefaultMaxImageDimension is the default image size cap.
const DefaultMaxImageDimension = 4096

// NewDefaultConfiguration returns the default configuration.
func NewDefaultConfiguration() *Configuration {
	return &Configuration{
		ValidationMode:    ValidationRelaxed,
		DecodeAllStreams:  false,
		EncryptionPolicy:  EncryptReject,
		MaxImageDimension: DefaultMaxImageDimension,
	}
}

type configuration struct {
	ValidationMode    string `yaml:"validationMode"`
	DecodeAllStreams  bool   `yaml:"decodeAllStreams"`
	EncryptionPolicy  string `yaml:"encryptionPolicy"`
	MaxImageDimension int    `yaml:"maxImageDimension"`
}

func loadedConfig(c configuration) (*Configuration, error) {
	conf := NewDefaultConfiguration()

	switch c.ValidationMode {
	case "", "ValidationRelaxed":
		conf.ValidationMode = ValidationRelaxed
	case "ValidationStrict":
		conf.ValidationMode = ValidationStrict
	default:
		return nil, errors.Errorf("aurochs: config: unknown validationMode %q", c.ValidationMode)
	}

	switch c.EncryptionPolicy {
	case "", "reject":
		conf.EncryptionPolicy = EncryptReject
	case "ignore":
		conf.EncryptionPolicy = EncryptIgnore
	case "decrypt":
		conf.EncryptionPolicy = EncryptDecrypt
	default:
		return nil, errors.Errorf("aurochs: config: unknown encryptionPolicy %q", c.EncryptionPolicy)
	}

	conf.DecodeAllStreams = c.DecodeAllStreams

	if c.MaxImageDimension > 0 {
		conf.MaxImageDimension = c.MaxImageDimension
	}

	return conf, nil
}

// ParseConfig reads a YAML configuration.
func ParseConfig(r io.Reader) (*Configuration, error) {
	bb, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	var c configuration
	if err := yaml.Unmarshal(bb, &c); err != nil {
		return nil, errors.Wrap(err, "aurochs: config")
	}

	return loadedConfig(c)
}
