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

package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/endink/sharding-rewrite/core"
	"github.com/endink/sharding-rewrite/logging"
	"github.com/pingcap/errors"
	"go.uber.org/config"
)

var logger = logging.GetLogger("config")

// faultLogger throttles repeated faults of the same rule files.
var faultLogger = logging.NewThrottledLogger("config", logger, 10*time.Second)

// DefaultRuleFileLocations returns the candidate rule files, later files override earlier ones.
func DefaultRuleFileLocations() []string {
	var files []string
	if !core.IsWindows() {
		files = append(files, "/etc/go-sharding/rule.yaml", "/etc/go-sharding/rule.yml")
	}
	dir, err := os.Getwd()
	if err == nil {
		files = append(files, filepath.Join(dir, "rule.yaml"))
	} else {
		files = append(files, "rule.yaml")
	}
	return files
}

// LoadDefaultRules searches the default locations and loads every rule file found.
func LoadDefaultRules() (*Rules, error) {
	var sources []config.YAMLOption

	var sb = core.NewStringBuilder()
	sb.WriteLine()
	sb.WriteLine("Search rule configuration locations:")
	for _, f := range DefaultRuleFileLocations() {
		if core.FileExists(f) {
			sources = append(sources, config.File(f))
			sb.WriteLine("[Found]:", f)
		} else {
			sb.WriteLine("[Not Found]:", f)
		}
	}
	logger.Debug(sb.String())

	if len(sources) == 0 {
		return nil, errors.New("no rule configuration file was found")
	}
	return LoadRules(sources...)
}

func LoadRulesFromFile(file string) (*Rules, error) {
	if !core.FileExists(file) {
		return nil, errors.Errorf("rule configuration file '%s' was not found", file)
	}
	return LoadRules(config.File(file))
}

func LoadRulesFromString(ymlContent string) (*Rules, error) {
	return LoadRules(config.Source(strings.NewReader(ymlContent)))
}

// LoadRules merges the yaml sources and builds the rules.
func LoadRules(options ...config.YAMLOption) (*Rules, error) {
	options = append(options, config.Permissive())
	yml, err := config.NewYAML(options...)
	if err != nil {
		return nil, errors.Annotate(err, "rule configuration has bad format")
	}
	return LoadRulesFromYAML(yml)
}

func LoadRulesFromYAML(yml *config.YAML) (*Rules, error) {
	settings := &Settings{}
	if err := yml.Get(config.Root).Populate(settings); err != nil {
		return nil, errors.Trace(err)
	}
	rules, err := settings.Build()
	if err != nil {
		faultLogger.Warningf("load rule configuration fault:%s%v", core.LineSeparator, err)
		return nil, err
	}
	logger.Debugf("rule configuration loaded, sharding tables: %v", rules.Sharding.LogicTableNames())
	return rules, nil
}
