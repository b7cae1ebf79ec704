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
	"bytes"
	"crypto/aes"
	"crypto/md5"
	"crypto/sha1"
	"encoding/base64"
	"encoding/hex"
	"fmt"

	"github.com/endink/sharding-rewrite/core/provider"
	"github.com/pingcap/errors"
)

const (
	AESEncryptorType = "AES"
	MD5EncryptorType = "MD5"

	AESKeyProperty = "aes.key.value"
)

// Encryptor converts plain values into the values stored in cipher or assisted query columns.
// Nil stays nil. Implementations must be safe for concurrent use.
type Encryptor interface {
	provider.Provider
	Encrypt(plain interface{}) (interface{}, error)
	Decrypt(cipher interface{}) (interface{}, error)
}

func init() {
	registry := provider.DefaultRegistry()
	_ = registry.Register(provider.Encryptor, AESEncryptorType, newAESEncryptor)
	_ = registry.Register(provider.Encryptor, MD5EncryptorType, newMD5Encryptor)
}

// NewEncryptor creates a registered encryptor by type.
func NewEncryptor(encryptorType string, props map[string]string) (Encryptor, error) {
	p, err := provider.DefaultRegistry().Create(provider.Encryptor, encryptorType, props)
	if err != nil {
		return nil, err
	}
	e, ok := p.(Encryptor)
	if !ok {
		return nil, errors.Errorf("provider '%s' is not an encryptor", encryptorType)
	}
	return e, nil
}

// aesEncryptor is AES-128/ECB/PKCS5 with the first 16 bytes of sha1(key) as secret, output is base64.
type aesEncryptor struct {
	secret []byte
}

func newAESEncryptor(props map[string]string) (provider.Provider, error) {
	key, ok := props[AESKeyProperty]
	if !ok || key == "" {
		return nil, errors.Errorf("%s is required for AES encryptor", AESKeyProperty)
	}
	digest := sha1.Sum([]byte(key))
	return &aesEncryptor{secret: digest[:16]}, nil
}

func (a *aesEncryptor) GetName() string {
	return AESEncryptorType
}

func (a *aesEncryptor) Encrypt(plain interface{}) (interface{}, error) {
	if plain == nil {
		return nil, nil
	}
	block, err := aes.NewCipher(a.secret)
	if err != nil {
		return nil, errors.Trace(err)
	}
	data := pkcs5Padding([]byte(fmt.Sprint(plain)), block.BlockSize())
	out := make([]byte, len(data))
	for i := 0; i < len(data); i += block.BlockSize() {
		block.Encrypt(out[i:i+block.BlockSize()], data[i:i+block.BlockSize()])
	}
	return base64.StdEncoding.EncodeToString(out), nil
}

func (a *aesEncryptor) Decrypt(cipher interface{}) (interface{}, error) {
	if cipher == nil {
		return nil, nil
	}
	data, err := base64.StdEncoding.DecodeString(fmt.Sprint(cipher))
	if err != nil {
		return nil, errors.Trace(err)
	}
	block, err := aes.NewCipher(a.secret)
	if err != nil {
		return nil, errors.Trace(err)
	}
	if len(data) == 0 || len(data)%block.BlockSize() != 0 {
		return nil, errors.New("cipher text is not a multiple of the block size")
	}
	out := make([]byte, len(data))
	for i := 0; i < len(data); i += block.BlockSize() {
		block.Decrypt(out[i:i+block.BlockSize()], data[i:i+block.BlockSize()])
	}
	padding := int(out[len(out)-1])
	if padding == 0 || padding > block.BlockSize() {
		return nil, errors.New("invalid padding in cipher text")
	}
	return string(out[:len(out)-padding]), nil
}

func pkcs5Padding(data []byte, blockSize int) []byte {
	padding := blockSize - len(data)%blockSize
	return append(data, bytes.Repeat([]byte{byte(padding)}, padding)...)
}

// md5Encryptor is one-way, it is intended for assisted query columns.
type md5Encryptor struct{}

func newMD5Encryptor(_ map[string]string) (provider.Provider, error) {
	return &md5Encryptor{}, nil
}

func (m *md5Encryptor) GetName() string {
	return MD5EncryptorType
}

func (m *md5Encryptor) Encrypt(plain interface{}) (interface{}, error) {
	if plain == nil {
		return nil, nil
	}
	sum := md5.Sum([]byte(fmt.Sprint(plain)))
	return hex.EncodeToString(sum[:]), nil
}

func (m *md5Encryptor) Decrypt(cipher interface{}) (interface{}, error) {
	return cipher, nil
}
