// SPDX-License-Identifier: Apache-2.0

// Package document implements the document assembler: header/footer
// wrapper selection, document-key generation, and the final HTML write.
package document

import (
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/wkelly17/bibleassembler/pkg/api"
)

// maxKeyBytes is the overflow threshold: a deterministic key longer
// than this is replaced by a timestamp/uuid-derived key instead.
const maxKeyBytes = 240

// Key computes the deterministic document key for req: a slug built from
// its resource-request list plus strategy/layout/chunk settings, so that
// identical requests produce identical keys. nowUnix is supplied
// by the caller (timestamps are not computable mid-process here) and is
// only consumed on the overflow path.
func Key(req api.DocumentRequest, nowUnix int64) string {
	key := deterministicKey(req)
	if len(key) <= maxKeyBytes {
		return key
	}
	return fallbackKey(req, nowUnix)
}

func deterministicKey(req api.DocumentRequest) string {
	var parts []string
	for _, rr := range req.ResourceRequests {
		parts = append(parts, fmt.Sprintf("%s-%s-%s", rr.LangCode, rr.ResourceType, rr.BookCode))
	}
	body := strings.Join(parts, "_")
	settings := fmt.Sprintf("%s_%s_%s", req.AssemblyStrategyKind, req.AssemblyLayoutKind, req.EffectiveChunkSize())
	if req.LayoutForPrint {
		settings += "_print"
	}
	return sanitizeKey(body + "__" + settings)
}

// fallbackKey derives a short, collision-resistant key from the same
// inputs the deterministic key used plus the caller-supplied timestamp.
// The uuid part is a namespace hash, not a random uuid, so two calls for
// the same oversized request agree only when they pass the same nowUnix.
func fallbackKey(req api.DocumentRequest, nowUnix int64) string {
	sum := sha1.Sum([]byte(deterministicKey(req)))
	id := uuid.NewSHA1(uuid.NameSpaceOID, sum[:])
	return fmt.Sprintf("doc-%d-%s", nowUnix, id.String())
}

func sanitizeKey(s string) string {
	var sb strings.Builder
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			sb.WriteRune(r)
		default:
			sb.WriteRune('-')
		}
	}
	return sb.String()
}

// ShortHash is a convenience used by callers that want a fixed-width
// fingerprint of a request (e.g. log correlation) without the full key.
func ShortHash(req api.DocumentRequest) string {
	sum := sha1.Sum([]byte(deterministicKey(req)))
	return hex.EncodeToString(sum[:])[:12]
}
