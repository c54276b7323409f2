package auth

import (
	"strings"

	"github.com/dmitrijs2005/chatserver/internal/common"
)

// ParseBearer extracts the token from an Authorization value of the form
// "Bearer <token>". The scheme is matched case-insensitively.
func ParseBearer(header string) (string, error) {
	header = strings.TrimSpace(header)
	if header == "" {
		return "", reject(ReasonMissing, nil)
	}
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, common.BearerScheme) {
		return "", reject(ReasonMalformed, nil)
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return "", reject(ReasonMissing, nil)
	}
	return token, nil
}
