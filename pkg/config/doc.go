// Package config loads layered application configuration backed by koanf.
//
// Sources are applied in order, later ones overriding earlier ones:
//
//  1. Defaults passed with WithDefaults
//  2. A YAML file (WithFile, or WithSearch to look in parent directories)
//  3. Environment variables with the APP__ prefix
//
// Environment names map to dotted paths by dropping the prefix, lowercasing
// and turning double underscores into dots:
//
//	APP__SERVICES__DISCORD__CLIENT_ID -> services.discord.client_id
//
// OAuth drivers read their credentials from "services.<driver>":
//
//	services:
//	  discord:
//	    client_id: "..."
//	    client_secret: "..."
//	    redirect: "https://example.com/auth/discord/callback"
package config
