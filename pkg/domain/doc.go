/*
Package domain defines the core value types of the Visio bridge: canonical
operations, color and line-style values, document handles, resolution trails
and the error taxonomy shared by every layer.

Everything in this package is a plain value. Parsing helpers (ParseColor,
ParseLineStyle) are pure functions; nothing here touches the network, the
filesystem or the privileged executor.
*/
package domain
