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

package provider

import (
	"fmt"
	"strings"
	"sync"

	"github.com/pingcap/errors"
)

type Type int

const (
	KeyGenerator Type = iota
	Encryptor
)

func (t Type) String() string {
	switch t {
	case KeyGenerator:
		return "key-generator"
	case Encryptor:
		return "encryptor"
	}
	return fmt.Sprintf("provider-type(%d)", int(t))
}

// Provider is a named, pluggable algorithm.
type Provider interface {
	GetName() string
}

// Factory creates a provider instance from configured properties.
type Factory func(props map[string]string) (Provider, error)

var onceReg sync.Once
var instance Registry

type Registry interface {
	Register(tp Type, name string, factory Factory) error
	TryLoad(tp Type, name string) (Factory, bool)
	Create(tp Type, name string, props map[string]string) (Provider, error)
	Names(tp Type) []string
	Delete(tp Type, name string)
}

// DefaultRegistry is the process wide registry, built-in providers register themselves in init.
func DefaultRegistry() Registry {
	onceReg.Do(func() {
		instance = NewRegistry()
	})
	return instance
}

func NewRegistry() Registry {
	return &registry{}
}

type registry struct {
	mp sync.Map
}

func getFullName(tp Type, name string) string {
	n := strings.ToUpper(strings.TrimSpace(name))
	if n == "" {
		panic(errors.New("provider name can not be null"))
	}
	return fmt.Sprintf("%d:%s", int(tp), n)
}

func (r *registry) Register(tp Type, name string, factory Factory) error {
	if factory == nil {
		return errors.New("provider factory can not be null")
	}
	if strings.TrimSpace(name) == "" {
		return errors.New("provider name can not be empty")
	}
	if _, loaded := r.mp.LoadOrStore(getFullName(tp, name), factory); loaded {
		return errors.Errorf("%s '%s' has already been registered", tp, name)
	}
	return nil
}

func (r *registry) TryLoad(tp Type, name string) (Factory, bool) {
	if strings.TrimSpace(name) == "" {
		return nil, false
	}
	v, ok := r.mp.Load(getFullName(tp, name))
	if !ok {
		return nil, false
	}
	return v.(Factory), true
}

func (r *registry) Create(tp Type, name string, props map[string]string) (Provider, error) {
	factory, ok := r.TryLoad(tp, name)
	if !ok {
		return nil, errors.Errorf("%s type '%s' was not found", tp, name)
	}
	if props == nil {
		props = map[string]string{}
	}
	p, err := factory(props)
	if err != nil {
		return nil, errors.Annotatef(err, "create %s '%s' fault", tp, name)
	}
	return p, nil
}

func (r *registry) Names(tp Type) []string {
	prefix := fmt.Sprintf("%d:", int(tp))
	var names []string
	r.mp.Range(func(key, _ interface{}) bool {
		k := key.(string)
		if strings.HasPrefix(k, prefix) {
			names = append(names, strings.TrimPrefix(k, prefix))
		}
		return true
	})
	return names
}

func (r *registry) Delete(tp Type, name string) {
	r.mp.Delete(getFullName(tp, name))
}
