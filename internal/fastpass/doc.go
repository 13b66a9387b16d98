// Package fastpass genera la URL de single-sign-on ("Fastpass") para la
// comunidad de Get Satisfaction, firmada con OAuth 1.0 two-legged (HMAC-SHA1).
//
// # Design Decisions
//
//   - Sin I/O: firmar es una función pura de sus inputs más nonce y timestamp.
//   - Nonce y reloj inyectables (Noncer, Clock) para poder fijarlos en tests.
//   - Validación en dos fases: se juntan TODOS los errores y recién después se
//     construye el objeto inmutable. Nunca se devuelve un objeto a medio armar.
//   - El encoding es RFC 3986 explícito (ver PercentEncode), sin depender de
//     internals de ninguna librería OAuth.
//
// # Usage
//
//	fp, err := fastpass.New(fastpass.Config{
//	    Secure: true,
//	    Key:    consumerKey,
//	    Secret: consumerSecret,
//	    Email:  "jane@example.com",
//	    Name:   "Jane Doe",
//	    UID:    "42",
//	})
//	if err != nil {
//	    return err
//	}
//	url, err := fp.URL()
package fastpass
