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

package telemetry

import (
	"strings"
	"sync"

	"github.com/pingcap/errors"
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "sharding"

const (
	ConditionKindWhere  = "where"
	ConditionKindInsert = "insert"

	ConditionResultOk            = "ok"
	ConditionResultAlwaysFalse   = "always_false"
	ConditionResultUnconstrained = "unconstrained"

	RewriteModeSingle = "single"
	RewriteModeUnits  = "units"
)

var (
	shardingConditions = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      BuildMetricName("Conditions", "Total"),
		Help:      "Number of sharding conditions extracted, by clause kind and result.",
	}, []string{"kind", "result"})

	tokensGenerated = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      BuildMetricName("SqlTokensGenerated", "Total"),
		Help:      "Number of sql tokens generated, by generator.",
	}, []string{"generator"})

	rewrites = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      BuildMetricName("SqlRewrite", "Total"),
		Help:      "Number of rewritten statements, by rewrite mode.",
	}, []string{"mode"})

	registered sync.Map
)

// MustRegister registers the collectors to the registerer, registering twice to the same registerer is a no-op.
func MustRegister(reg prometheus.Registerer) {
	if _, loaded := registered.LoadOrStore(reg, true); loaded {
		return
	}
	reg.MustRegister(shardingConditions, tokensGenerated, rewrites)
}

func ObserveShardingConditions(kind string, result string, count int) {
	shardingConditions.WithLabelValues(kind, result).Add(float64(count))
}

func ObserveTokens(generator string, count int) {
	if count > 0 {
		tokensGenerated.WithLabelValues(generator).Add(float64(count))
	}
}

func ObserveRewrite(mode string) {
	rewrites.WithLabelValues(mode).Inc()
}

// BuildMetricName converts camel case statements into a snake case metric name joined by '_',
// leading and trailing separators of each statement are dropped.
func BuildMetricName(statement ...string) string {
	if len(statement) == 0 {
		panic(errors.New("name for 'BuildMetricName' can not be nil or empty"))
	}

	sb := &strings.Builder{}
	array := make([]string, 0, len(statement))
	for _, s := range statement {
		sb.Reset()
		prevUpper := true
		for _, current := range []byte(strings.Trim(s, "._- ")) {
			switch {
			case 'A' <= current && current <= 'Z':
				if !prevUpper {
					sb.WriteByte('_')
				}
				sb.WriteByte(current + ('a' - 'A'))
				prevUpper = true
			case current == '.' || current == '-' || current == '_':
				if !prevUpper {
					sb.WriteByte('_')
				}
				prevUpper = true
			default:
				sb.WriteByte(current)
				prevUpper = false
			}
		}
		if sb.Len() > 0 {
			array = append(array, sb.String())
		}
	}
	return strings.Join(array, "_")
}
