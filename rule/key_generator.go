/*
 * Copyright 2021. Go-Sharding Author All Rights Reserved.
 *
 *  Licensed under the Apache License, Version 2.0 (the "License");
 *  you may not use this file except in compliance with the License.
 *  You may obtain a copy of the License at
 *
 *      http://www.apache.org/licenses/LICENSE-2.0
 *
 *  Unless required by applicable law or agreed to in writing, software
 *  distributed under the License is distributed on an "AS IS" BASIS,
 *  WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 *  See the License for the specific language governing permissions and
 *  limitations under the License.
 *
 *  File author: Anders Xiao
 */

package rule

import (
	"strconv"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/endink/sharding-rewrite/core/provider"
	"github.com/google/uuid"
	"github.com/pingcap/errors"
)

const (
	SnowflakeKeyGeneratorType = "SNOWFLAKE"
	UUIDKeyGeneratorType      = "UUID"

	// SnowflakeWorkerIDProperty selects the snowflake node, 0 to 1023.
	SnowflakeWorkerIDProperty = "worker.id"
)

// KeyGenerator creates values for a key column omitted by an insert statement.
// Implementations must be safe for concurrent use.
type KeyGenerator interface {
	provider.Provider
	Generate() (interface{}, error)
}

func init() {
	registry := provider.DefaultRegistry()
	_ = registry.Register(provider.KeyGenerator, SnowflakeKeyGeneratorType, newSnowflakeKeyGenerator)
	_ = registry.Register(provider.KeyGenerator, UUIDKeyGeneratorType, newUUIDKeyGenerator)
}

// NewKeyGenerator creates a registered key generator by type.
func NewKeyGenerator(generatorType string, props map[string]string) (KeyGenerator, error) {
	p, err := provider.DefaultRegistry().Create(provider.KeyGenerator, generatorType, props)
	if err != nil {
		return nil, err
	}
	g, ok := p.(KeyGenerator)
	if !ok {
		return nil, errors.Errorf("provider '%s' is not a key generator", generatorType)
	}
	return g, nil
}

type snowflakeKeyGenerator struct {
	node *snowflake.Node
}

func newSnowflakeKeyGenerator(props map[string]string) (provider.Provider, error) {
	var workerID int64
	if v := strings.TrimSpace(props[SnowflakeWorkerIDProperty]); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return nil, errors.Annotatef(err, "invalid snowflake %s: %s", SnowflakeWorkerIDProperty, v)
		}
		workerID = id
	}
	node, err := snowflake.NewNode(workerID)
	if err != nil {
		return nil, errors.Trace(err)
	}
	return &snowflakeKeyGenerator{node: node}, nil
}

func (s *snowflakeKeyGenerator) GetName() string {
	return SnowflakeKeyGeneratorType
}

func (s *snowflakeKeyGenerator) Generate() (interface{}, error) {
	return s.node.Generate().Int64(), nil
}

type uuidKeyGenerator struct{}

func newUUIDKeyGenerator(_ map[string]string) (provider.Provider, error) {
	return &uuidKeyGenerator{}, nil
}

func (u *uuidKeyGenerator) GetName() string {
	return UUIDKeyGeneratorType
}

func (u *uuidKeyGenerator) Generate() (interface{}, error) {
	return strings.Replace(uuid.New().String(), "-", "", -1), nil
}
