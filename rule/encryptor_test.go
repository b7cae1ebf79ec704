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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeyGenerators(t *testing.T) {
	g, err := NewKeyGenerator("snowflake", map[string]string{SnowflakeWorkerIDProperty: "3"})
	require.Nil(t, err)
	assert.Equal(t, SnowflakeKeyGeneratorType, g.GetName())
	v, err := g.Generate()
	assert.Nil(t, err)
	assert.IsType(t, int64(0), v)

	_, err = NewKeyGenerator(SnowflakeKeyGeneratorType, map[string]string{SnowflakeWorkerIDProperty: "x"})
	assert.Error(t, err)

	g, err = NewKeyGenerator(UUIDKeyGeneratorType, nil)
	require.Nil(t, err)
	v, err = g.Generate()
	assert.Nil(t, err)
	assert.Len(t, v, 32)

	_, err = NewKeyGenerator("NOT_EXISTED", nil)
	assert.Error(t, err)
}

func TestAESEncryptor(t *testing.T) {
	e, err := NewEncryptor(AESEncryptorType, map[string]string{AESKeyProperty: "test"})
	require.Nil(t, err)

	cipher, err := e.Encrypt("test")
	assert.Nil(t, err)
	assert.Equal(t, "dSpPiyENQGDUXMKFMJPGWA==", cipher)

	plain, err := e.Decrypt(cipher)
	assert.Nil(t, err)
	assert.Equal(t, "test", plain)

	cipher, err = e.Encrypt(nil)
	assert.Nil(t, err)
	assert.Nil(t, cipher)

	_, err = NewEncryptor(AESEncryptorType, nil)
	assert.Error(t, err)
}

func TestMD5Encryptor(t *testing.T) {
	e, err := NewEncryptor(MD5EncryptorType, nil)
	require.Nil(t, err)

	v, err := e.Encrypt("test")
	assert.Nil(t, err)
	assert.Equal(t, "098f6bcd4621d373cade4e832627b4f6", v)

	v, err = e.Encrypt(123)
	assert.Nil(t, err)
	assert.Equal(t, "202cb962ac59075b964b07152d234b70", v)

	v, err = e.Decrypt("098f6bcd4621d373cade4e832627b4f6")
	assert.Nil(t, err)
	assert.Equal(t, "098f6bcd4621d373cade4e832627b4f6", v)
}

func TestEncryptRule(t *testing.T) {
	aes, err := NewEncryptor(AESEncryptorType, map[string]string{AESKeyProperty: "test"})
	require.Nil(t, err)
	md5, err := NewEncryptor(MD5EncryptorType, nil)
	require.Nil(t, err)

	r := NewEncryptRule(true, NewEncryptTable("T_User", &EncryptColumn{
		LogicColumn:            "pwd",
		CipherColumn:           "pwd_cipher",
		PlainColumn:            "pwd_plain",
		AssistedQueryColumn:    "pwd_assisted",
		Encryptor:              aes,
		AssistedQueryEncryptor: md5,
	}))

	assert.True(t, r.IsEncryptTable("t_user"))
	c, ok := r.FindEncryptColumn("t_user", "PWD")
	assert.True(t, ok)
	assert.True(t, c.HasPlainColumn())
	assert.True(t, c.HasAssistedQueryColumn())
	_, ok = r.FindEncryptColumn("t_user", "name")
	assert.False(t, ok)

	table, _ := r.FindEncryptTable("t_user")
	logic, ok := table.FindLogicColumn("PWD_CIPHER")
	assert.True(t, ok)
	assert.Equal(t, "pwd", logic)

	values, err := r.EncryptValues("t_user", "pwd", []interface{}{"test", nil})
	assert.Nil(t, err)
	assert.Equal(t, []interface{}{"dSpPiyENQGDUXMKFMJPGWA==", nil}, values)

	values, err = r.EncryptAssistedQueryValues("t_user", "pwd", []interface{}{"test"})
	assert.Nil(t, err)
	assert.Equal(t, []interface{}{"098f6bcd4621d373cade4e832627b4f6"}, values)

	_, err = r.EncryptValues("t_user", "name", []interface{}{"x"})
	assert.Error(t, err)

	var nilRule *EncryptRule
	assert.False(t, nilRule.IsEncryptTable("t_user"))
}

func TestEncryptQueryColumns(t *testing.T) {
	aes, err := NewEncryptor(AESEncryptorType, map[string]string{AESKeyProperty: "test"})
	require.Nil(t, err)
	md5, err := NewEncryptor(MD5EncryptorType, nil)
	require.Nil(t, err)

	pwd := &EncryptColumn{
		LogicColumn:            "pwd",
		CipherColumn:           "pwd_cipher",
		PlainColumn:            "pwd_plain",
		AssistedQueryColumn:    "pwd_assisted",
		Encryptor:              aes,
		AssistedQueryEncryptor: md5,
	}
	mobile := &EncryptColumn{LogicColumn: "mobile", CipherColumn: "mobile_cipher", Encryptor: aes}
	r := NewEncryptRule(true, NewEncryptTable("t_user", pwd, mobile))

	assert.Equal(t, []EncryptDerivedColumn{
		{LogicColumn: "pwd", Name: "pwd_assisted", Assisted: true},
		{LogicColumn: "pwd", Name: "pwd_plain"},
	}, r.DerivedColumns("t_user", []string{"id", "mobile", "PWD"}))
	assert.Equal(t, 0, len(r.DerivedColumns("t_order", []string{"pwd"})))

	name, plain := r.QueryColumn(pwd)
	assert.Equal(t, "pwd_assisted", name)
	assert.False(t, plain)
	name, _ = r.QueryColumn(mobile)
	assert.Equal(t, "mobile_cipher", name)
	assert.Equal(t, "pwd_cipher", r.ProjectionColumn(pwd))

	values, err := r.EncryptQueryValues("t_user", pwd, []interface{}{"test"})
	assert.Nil(t, err)
	assert.Equal(t, []interface{}{"098f6bcd4621d373cade4e832627b4f6"}, values)

	plainRule := NewEncryptRule(false, NewEncryptTable("t_user", pwd, mobile))
	name, plain = plainRule.QueryColumn(pwd)
	assert.Equal(t, "pwd_plain", name)
	assert.True(t, plain)
	assert.Equal(t, "pwd_plain", plainRule.ProjectionColumn(pwd))
	assert.Equal(t, "mobile_cipher", plainRule.ProjectionColumn(mobile))
	values, err = plainRule.EncryptQueryValues("t_user", pwd, []interface{}{"test"})
	assert.Nil(t, err)
	assert.Equal(t, []interface{}{"test"}, values)
}
