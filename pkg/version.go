package nstil

// Version is the released version of the nstil client.
const Version = "0.3.0"
