// SPDX-License-Identifier: Apache-2.0

package catalog

// resourceTypeAliases normalizes the handful of alternate catalog JSON key
// spellings a given resource kind is published under (e.g. translation
// notes as "tn" vs "tn-wa") onto one canonical lookup key.
var resourceTypeAliases = map[string]string{
	"tn":         "notes",
	"tn-wa":      "notes",
	"notes":      "notes",
	"tq":         "questions",
	"tq-wa":      "questions",
	"questions":  "questions",
	"tw":         "words",
	"tw-wa":      "words",
	"words":      "words",
	"ulb":        "scripture",
	"udb":        "scripture",
	"reg":        "scripture",
	"scripture":  "scripture",
	"bc":         "commentary",
	"commentary": "commentary",
}

// canonicalResourceTypeKey maps a resource-type string (either a short
// catalog code such as "ulb"/"tn" or our own ResourceType enum value) to the
// canonical catalog lookup key.
func canonicalResourceTypeKey(resourceType string) string {
	if canon, ok := resourceTypeAliases[resourceType]; ok {
		return canon
	}
	return resourceType
}
