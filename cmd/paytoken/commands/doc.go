// Package commands defines the paytoken CLI.
//
// Commands
//
//   - unseal    Verify and decrypt a payment token read from a file or stdin
//   - prefetch  Fetch the signing key directory and print the cached keys
//
// Settings come from a YAML file (--config, or paytoken.yaml), a .env file
// and PAYMENTDATA_* environment variables. Flags win over all of them.
package commands
