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

package core

import (
	"fmt"
	"os"
	"regexp"
	"runtime"
	"strings"
	"sync"
)

// Column identifies a column of a logic table, names are compared case-insensitively.
type Column struct {
	Name      string
	TableName string
}

func NewColumn(name string, tableName string) Column {
	return Column{
		Name:      TrimAndLower(name),
		TableName: TrimAndLower(tableName),
	}
}

func (c Column) String() string {
	return fmt.Sprintf("%s.%s", c.TableName, c.Name)
}

func TrimAndLower(v string) string {
	return strings.ToLower(strings.TrimSpace(v))
}

// EqualsIgnoreCase compares two identifiers the way MySQL compares table and column names.
func EqualsIgnoreCase(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}

func DistinctSliceAndTrim(slice []string) []string {
	result := make([]string, 0, len(slice))
	temp := map[string]struct{}{}
	for _, item := range slice {
		trim := strings.TrimSpace(item)
		if trim != "" {
			if _, ok := temp[trim]; !ok {
				temp[trim] = Nothing
				result = append(result, trim)
			}
		}
	}
	return result
}

var Nothing = struct{}{}

var LineSeparator = "\n"

func IsWindows() bool {
	return strings.ToLower(runtime.GOOS) == "windows"
}

func FileExists(name string) bool {
	info, err := os.Lstat(name)
	if err != nil {
		return false
	}
	return !info.IsDir()
}

var identityRegex *regexp.Regexp
var identityRegexOnce sync.Once

func ValidateIdentifier(identifier string) error {
	identityRegexOnce.Do(func() {
		identityRegex = regexp.MustCompile(`^[A-Za-z]+[A-Za-z0-9_-]*$`)
	})
	if !identityRegex.MatchString(identifier) {
		return fmt.Errorf("identifier must starts with a letter and letters, numbers, underline(_), minus(-) are allowed, given value: %s", identifier)
	}
	return nil
}
