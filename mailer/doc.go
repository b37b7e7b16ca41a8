// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package mailer sends sign-up verification codes.

	var m mailer.Sender = mailer.Disabled{}
	if cfg.ResendAPIKey != "" {
		m = mailer.NewResend(cfg.ResendAPIKey, cfg.EmailFrom, cfg.BaseURL)
	}

Disabled reports Enabled() == false; the sign-up handler then verifies the
account immediately instead of sending a code.

# Errors

Send failures are *SendError with a Reason:

  - ReasonConfig: the provider rejected the API key
  - ReasonRateLimit: too many requests, try again later
  - ReasonFailed: anything else

SendError.Error() is safe to show to the user.
*/
package mailer
