package usecase

import (
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"strings"
)

const nextSkillKeyPrefix = "nextskill:"

// normalizeQuery lower-cases and collapses whitespace. Detection is
// case-insensitive and word based, so normalized queries predict the same.
func normalizeQuery(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

func NextSkillCacheKey(query string, topN int) string {
	sum := sha256.Sum256([]byte(normalizeQuery(query) + "\x00" + strconv.Itoa(topN)))
	return nextSkillKeyPrefix + hex.EncodeToString(sum[:])
}

// NextSkillCachePattern matches every cached prediction.
func NextSkillCachePattern() string {
	return nextSkillKeyPrefix + "*"
}
