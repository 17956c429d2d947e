// Package jsonfile implements [network.Source] over a JSON file.
//
// Two layouts are accepted. The store database format keeps people and
// relationships with person1_id/person2_id endpoints:
//
//	{
//	  "people": [{"id": 1, "name": "Ana", "email": "ana@x.org", "faction": "PCC",
//	              "risk_level": "alto", "age": 34}],
//	  "relationships": [{"id": 1, "person1_id": 1, "person2_id": 2,
//	                     "relationship_type": "family", "strength": 0.8,
//	                     "start_time": "2023-01-15", "end_time": null}]
//	}
//
// The snapshot format is the one written by graph.WriteSnapshotFile.
// Unknown person fields are kept in Entity.Attributes.
//
// The file is read once by [Open]; [Store.Reload] picks up external edits.
package jsonfile
