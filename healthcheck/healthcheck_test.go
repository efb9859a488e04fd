// Copyright 2024
// SPDX-License-Identifier: Apache-2.0
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
package healthcheck_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/penny-vault/pvsnapshot/healthcheck"
)

var _ = Describe("Check", func() {
	var (
		server *httptest.Server
		paths  []string
		bodies []string
		status int
	)

	BeforeEach(func() {
		paths = nil
		bodies = nil
		status = http.StatusOK

		server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			body, _ := io.ReadAll(r.Body)
			paths = append(paths, r.URL.Path)
			bodies = append(bodies, string(body))
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(status)
			_, _ = w.Write([]byte(`{"ping_url": "https://hc-ping.com/5f0d2c4e-aaaa-bbbb-cccc-1234567890ab"}`))
		}))
	})

	AfterEach(func() {
		server.Close()
	})

	It("pings start, success and fail", func() {
		check := &healthcheck.Check{ID: "abc123", PingURL: server.URL}
		ctx := context.Background()

		Expect(check.Start(ctx)).To(Succeed())
		Expect(check.Success(ctx, "loaded 2 symbols")).To(Succeed())
		Expect(check.Fail(ctx, "load failed")).To(Succeed())

		Expect(paths).To(Equal([]string{"/abc123/start", "/abc123", "/abc123/fail"}))
		Expect(bodies[1]).To(Equal("loaded 2 symbols"))
	})

	It("does nothing when no check is configured", func() {
		check := healthcheck.New("")
		Expect(check.Start(context.Background())).To(Succeed())
		Expect(paths).To(BeEmpty())
	})

	It("reports invalid status codes", func() {
		status = http.StatusNotFound
		check := &healthcheck.Check{ID: "abc123", PingURL: server.URL}

		Expect(check.Start(context.Background())).To(MatchError(healthcheck.ErrStatus))
	})

	It("creates a check and returns its id", func() {
		status = http.StatusCreated

		id, err := healthcheck.Create(context.Background(), server.URL, "key", "pvsnapshot", "pvsnapshot",
			[]string{"pvsnapshot"}, "0 18 * * 1-5")
		Expect(err).NotTo(HaveOccurred())
		Expect(id).To(Equal("5f0d2c4e-aaaa-bbbb-cccc-1234567890ab"))
		Expect(paths).To(Equal([]string{"/checks/"}))
	})
})
