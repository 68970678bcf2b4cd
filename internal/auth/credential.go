// Copyright (c) 2026 Krishi Mitra. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

// Credential is the proof a farmer presents at login. The set of variants is
// closed: [PasswordCredential] and [CodeCredential].
type Credential interface {
	credential()
}

// PasswordCredential authenticates with a mobile number or email plus password.
type PasswordCredential struct {
	Identifier string
	Password   string
}

// CodeCredential authenticates with a mobile number and the code sent to it.
type CodeCredential struct {
	Mobile string
	Code   string
}

func (PasswordCredential) credential() {}
func (CodeCredential) credential()     {}
