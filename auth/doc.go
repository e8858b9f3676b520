// Copyright (c) 2025 Hosteldesk.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package auth verifies the signed identity headers attached by the
external identity provider.

# Identity Headers

The identity provider fronts the API and resolves each request to a
{userId, role, hostel} triple, which it forwards as headers:

	X-User-Id:      s-1042
	X-User-Role:    student
	X-Hostel:       north-block
	X-Identity-Key: HMAC-SHA256(userId|role|hostel, salt)

FromRequest verifies the key and returns the Identity:

	ident, err := auth.FromRequest(r, cfg.IdentitySalt)

The key uses HMAC-SHA256 with a salt shared with the identity provider,
URL-safe base64 encoded without padding. Since it's deterministic, the
same triple and salt always produce the same key. This allows
verification without storing anything in the database.

# Role Predicates

	ident.IsStaff()   // caretaker or warden: week/option/finalize management
	ident.IsStudent() // voting and my-votes

Password hashing, token issuance, and the user directory itself live in
the identity provider, not here.
*/
package auth
