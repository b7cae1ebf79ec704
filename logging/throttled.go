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

package logging

import (
	"fmt"
	"sync"
	"time"
)

// ThrottledLogger writes at most one message per interval. Messages dropped in between are
// counted and the count is reported with the next message written.
type ThrottledLogger struct {
	name     string
	interval time.Duration
	logger   StandardLogger
	now      func() time.Time

	mu      sync.Mutex
	last    time.Time
	skipped int
}

// NewThrottledLogger creates a ThrottledLogger, a nil logger writes to the "throttled" logger.
func NewThrottledLogger(name string, logger StandardLogger, interval time.Duration) *ThrottledLogger {
	if logger == nil {
		logger = GetLogger("throttled")
	}
	return &ThrottledLogger{
		name:     name,
		interval: interval,
		logger:   logger,
		now:      time.Now,
	}
}

func (tl *ThrottledLogger) log(write func(args ...interface{}), format string, v ...interface{}) {
	now := tl.now()

	tl.mu.Lock()
	if !tl.last.IsZero() && now.Sub(tl.last) < tl.interval {
		tl.skipped++
		tl.mu.Unlock()
		return
	}
	skipped := tl.skipped
	tl.last, tl.skipped = now, 0
	tl.mu.Unlock()

	msg := tl.name + ": " + fmt.Sprintf(format, v...)
	if skipped > 0 {
		msg = fmt.Sprintf("%s (%d similar messages skipped)", msg, skipped)
	}
	write(msg)
}

func (tl *ThrottledLogger) Infof(format string, v ...interface{}) {
	tl.log(tl.logger.Info, format, v...)
}

func (tl *ThrottledLogger) Warningf(format string, v ...interface{}) {
	tl.log(tl.logger.Warn, format, v...)
}

func (tl *ThrottledLogger) Errorf(format string, v ...interface{}) {
	tl.log(tl.logger.Error, format, v...)
}
