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

package explain

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/endink/sharding-rewrite/statement"
)

var literalEscaper = strings.NewReplacer(`\`, `\\`, `'`, `''`)

// FormatValue renders a value as a mysql literal.
func FormatValue(value interface{}) string {
	switch v := value.(type) {
	case nil:
		return "NULL"
	case string:
		return "'" + literalEscaper.Replace(v) + "'"
	case []byte:
		return "'" + literalEscaper.Replace(string(v)) + "'"
	case bool:
		return strconv.FormatBool(v)
	case time.Time:
		return "'" + v.Format("2006-01-02 15:04:05.999999") + "'"
	case float32:
		return strconv.FormatFloat(float64(v), 'f', -1, 32)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	}
	return fmt.Sprint(value)
}

// FormatExpression renders an expression the way it is written back into the sql.
func FormatExpression(expr statement.ExpressionSegment) string {
	switch e := expr.(type) {
	case *statement.LiteralExpression:
		return FormatValue(e.Value)
	case *statement.DerivedLiteralExpression:
		return FormatValue(e.Value)
	case *statement.ParameterMarkerExpression, *statement.DerivedParameterMarkerExpression:
		return "?"
	case *statement.ComplexExpression:
		return e.Text
	case *statement.ColumnSegment:
		return e.QualifiedName()
	}
	return ""
}
