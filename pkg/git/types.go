// SPDX-FileCopyrightText: 2020 SAP SE or an SAP affiliate company and Gardener contributors
//
// SPDX-License-Identifier: Apache-2.0

package git

// DateFormat defines format for timestamps surfaced by this package's callers.
const DateFormat = "2006-01-02 15:04:05"
