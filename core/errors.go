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
	"github.com/endink/sharding-rewrite/core/comparison"
	"github.com/pingcap/errors"
)

var (
	// ErrNotComparable is returned when a literal used for routing can not be ordered.
	ErrNotComparable = comparison.ErrNotComparable
	// ErrMultipleSchemas is returned when tables of one statement are owned by different schemas.
	ErrMultipleSchemas = errors.New("cannot support multiple schemas in one sql")
)
