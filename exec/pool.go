// Copyright 2020 ZUP IT SERVICOS EM TECNOLOGIA E INOVACAO SA
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package exec

import (
	"time"

	"github.com/panjf2000/ants/v2"
)

const (
	// defaultPoolSize is used when the caller does not request a
	// specific worker count.
	defaultPoolSize = 10

	// poolExpiryDuration is the interval ants uses to clean up expired
	// idle workers.
	poolExpiryDuration = 10 * time.Second
)

// workerPool is the alias of ants.Pool.
type workerPool = ants.Pool

// newWorkerPool instantiates a goroutine pool sized for size, or
// defaultPoolSize if size is 0 or lower.
func newWorkerPool(size int) (*workerPool, error) {
	if size <= 0 {
		size = defaultPoolSize
	}
	return ants.NewPool(size, ants.WithOptions(ants.Options{ExpiryDuration: poolExpiryDuration}))
}
