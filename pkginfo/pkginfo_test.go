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
package pkginfo

import (
	"runtime/debug"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Build info", func() {
	It("fills missing fields from the vcs stamp", func() {
		info := Info{}
		applyBuildSettings(&info, []debug.BuildSetting{
			{Key: "vcs.revision", Value: "abc123"},
			{Key: "vcs.time", Value: "2024-05-16T06:00:00Z"},
			{Key: "vcs.modified", Value: "true"},
		})

		Expect(info.CommitHash).To(Equal("abc123"))
		Expect(info.BuildDate).To(Equal("2024-05-16T06:00:00Z"))
		Expect(info.Modified).To(BeTrue())
	})

	It("keeps values set at link time", func() {
		info := Info{CommitHash: "release", BuildDate: "2024-01-01"}
		applyBuildSettings(&info, []debug.BuildSetting{
			{Key: "vcs.revision", Value: "abc123"},
			{Key: "vcs.time", Value: "2024-05-16T06:00:00Z"},
		})

		Expect(info.CommitHash).To(Equal("release"))
		Expect(info.BuildDate).To(Equal("2024-01-01"))
	})

	It("names pvsnapshot in the user agent", func() {
		Expect(UserAgent()).To(HavePrefix("pvsnapshot/"))
		Expect(UserAgent()).To(ContainSubstring("github.com/penny-vault/pvsnapshot"))
	})
})
