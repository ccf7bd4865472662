// Package device implements the registration flow that provisions a
// device identity with the recognition backend. A device registers once
// to obtain a device_id and install_id, then fetches the service token
// from the settings endpoint. Credentials persist on disk so subsequent
// runs skip the flow entirely.
package device
