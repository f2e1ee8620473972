package domain

// KeyPrefix namespaces every key written to the shared Redis/Valkey instance.
const KeyPrefix = "lexiscope:"
